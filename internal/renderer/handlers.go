package renderer

import (
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/project"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"go.uber.org/zap"
)

// createHandlers wires inbound envelopes to store mutations. Each runs on
// the session loop in one batch; malformed payloads are logged and dropped.
func (s *Session) createHandlers() {
	s.handle(message.TypeChangeActiveView, func(env message.Envelope) {
		var p message.ChangeActiveView
		if !s.decode(env, &p) {
			return
		}
		view, err := types.ParseView(string(p.View))
		if err != nil {
			s.logger.Warn("ignoring view change", zap.Error(err))
			return
		}
		s.batch(func() {
			s.app.SetActiveView(view)
			s.resolveView()
		})
	})

	s.handle(message.TypeAppUpdate, func(env message.Envelope) {
		var p message.AppUpdate
		if !s.decode(env, &p) {
			return
		}
		if p.App.HostType != types.HostUnset {
			if _, err := types.ParseHostType(string(p.App.HostType)); err != nil {
				s.logger.Warn("ignoring app update", zap.Error(err))
				return
			}
		}
		if p.App.ActiveView != "" {
			if _, err := types.ParseView(string(p.App.ActiveView)); err != nil {
				s.logger.Warn("ignoring app update", zap.Error(err))
				return
			}
		}
		s.batch(func() {
			s.app.Update(p.App)
			s.resolveView()
		})
	})

	s.handle(message.TypeProjectOpened, func(env message.Envelope) {
		var p message.ProjectOpened
		if !s.decode(env, &p) {
			return
		}
		s.batch(func() {
			s.store.SetProject(project.From(p.Project))
			s.app.SetActiveView(types.ViewPageDetail)
			s.store.Commit()
		})
	})

	s.handle(message.TypeUndo, func(message.Envelope) {
		if err := s.store.Undo(); err != nil {
			s.logger.Debug("undo", zap.Error(err))
		}
	})

	s.handle(message.TypeRedo, func(message.Envelope) {
		if err := s.store.Redo(); err != nil {
			s.logger.Debug("redo", zap.Error(err))
		}
	})
}

// handle registers h to run on the session loop.
func (s *Session) handle(t message.Type, h func(message.Envelope)) {
	s.transport.Handle(t, func(env message.Envelope) {
		if err := s.loop.Post(func() { h(env) }); err != nil {
			s.logger.Debug("session stopped, dropping envelope", zap.String("type", t.String()))
		}
	})
}

func (s *Session) decode(env message.Envelope, v any) bool {
	if err := message.DecodePayload(env, v); err != nil {
		s.logger.Warn("ignoring malformed envelope",
			zap.String("type", env.Type.String()),
			zap.String("id", env.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}
