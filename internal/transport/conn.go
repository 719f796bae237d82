package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxFrameSize bounds inbound frames. Projects travel inside envelopes.
const maxFrameSize = 16 << 20

// serve runs the pumps for one connection and returns when either ends.
func (s *Sender) serve(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readDone := make(chan error, 1)
	go func() {
		readDone <- s.readPump(ctx, conn)
		cancel()
	}()

	s.writePump(ctx, conn)

	cancel()
	_ = conn.Close()
	if err := <-readDone; err != nil && !isNormalClose(err) {
		s.logger.Debug("read pump ended", zap.Error(err))
	}
}

// writePump drains the queue and pings when idle. A failed envelope is
// parked in pending and written first on the next connection.
func (s *Sender) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	if s.pending != nil {
		env := *s.pending
		if err := s.write(conn, env); err != nil {
			s.logger.Warn("resend failed", zap.String("id", env.ID.String()), zap.Error(err))
			return
		}
		s.pending = nil
	}

	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return

		case env := <-s.queue:
			if err := s.write(conn, env); err != nil {
				s.pending = &env
				s.logger.Warn("write failed, will resend after reconnect",
					zap.String("type", env.Type.String()),
					zap.String("id", env.ID.String()),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Sender) write(conn *websocket.Conn, env message.Envelope) error {
	data, err := message.Encode(env)
	if err != nil {
		// Unencodable envelopes are dropped, not retried.
		s.logger.Error("encode envelope", zap.Error(err))
		s.metrics.RecordEnvelopeDropped(env.Type.String(), "encode")
		return nil
	}

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", env.Type, err)
	}
	s.metrics.RecordEnvelopeSent(env.Type.String())
	return nil
}

// readPump decodes frames and dispatches them in arrival order.
func (s *Sender) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		if ctx.Err() != nil {
			return nil
		}

		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		env, err := message.Decode(data)
		if err != nil {
			s.logger.Warn("skipping malformed frame", zap.Int("bytes", len(data)), zap.Error(err))
			continue
		}

		s.metrics.RecordEnvelopeReceived(env.Type.String())
		s.dispatch(env)
	}
}

func (s *Sender) dispatch(env message.Envelope) {
	s.mu.RLock()
	handlers := make([]Handler, 0, len(s.handlers[env.Type])+len(s.anyHandlers))
	handlers = append(handlers, s.handlers[env.Type]...)
	handlers = append(handlers, s.anyHandlers...)
	s.mu.RUnlock()

	if len(handlers) == 0 {
		s.logger.Debug("no handler for envelope", zap.String("type", env.Type.String()))
		return
	}

	for _, h := range handlers {
		s.invoke(h, env)
	}
}

func (s *Sender) invoke(h Handler, env message.Envelope) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("envelope handler panicked",
				zap.String("type", env.Type.String()),
				zap.Any("panic", p),
			)
		}
	}()
	h(env)
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent)
}
