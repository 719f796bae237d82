package renderer

import (
	"github.com/GriffinCanCode/viewsync/internal/domain/app"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/domain/navigation"
	"github.com/GriffinCanCode/viewsync/internal/transport"
	"go.uber.org/zap"
)

// createFocusReaction mirrors App and Project into the navigation history
// and tells the host which window has focus, once per batch.
func (s *Session) createFocusReaction() {
	r := s.sched.Autorun("window-focused", func() {
		snap := s.store.Snapshot()
		s.shadow.Apply(snap.App, snap.Project)
		s.app.Send(message.NewWindowFocused(snap.App, snap.ProjectID()))
	}, s.app.Subject(), s.store.ProjectObservable())
	s.reactions = append(s.reactions, r)
}

// createListeners feeds navigation pops back into the App and re-announces
// the window after a reconnect.
func (s *Session) createListeners() {
	s.nav.OnPop(func(e navigation.Entry) {
		err := s.loop.Post(func() {
			s.shadow.Sync(e)
			s.batch(func() {
				s.app.Update(e.State)
				s.resolveView()
			})
		})
		if err != nil {
			s.logger.Debug("session stopped, ignoring navigation", zap.String("path", e.Path))
		}
	})

	s.transport.OnStateChange(func(state transport.State) {
		_ = s.loop.Post(func() {
			switch state {
			case transport.Connected:
				s.app.SetConnection(app.Online)
				if s.connectedBefore {
					s.announce()
				}
				s.connectedBefore = true
			default:
				s.app.SetConnection(app.Offline)
			}
		})
	})
}

// createNotifiers reports history changes to the host.
func (s *Session) createNotifiers() {
	r := s.sched.NewReaction("history-changed", func() {
		st := s.store.History().Stats()
		s.app.Send(message.NewHistoryChanged(message.HistoryChanged{
			CanUndo: st.CanUndo,
			CanRedo: st.CanRedo,
			Length:  st.Length,
			Cursor:  st.Cursor,
		}))
	}, s.store.HistoryObservable())
	s.reactions = append(s.reactions, r)
}

func (s *Session) announce() {
	snap := s.store.Snapshot()
	s.app.Send(message.NewWindowFocused(snap.App, snap.ProjectID()))
}
