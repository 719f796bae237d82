package hostserver

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSConfig tunes window connections.
type WSConfig struct {
	Buffer       int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	PingInterval time.Duration
	MaxFrameSize int64
}

// DefaultWSConfig returns the host's connection defaults.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		Buffer:       64,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  60 * time.Second,
		PingInterval: 20 * time.Second,
		MaxFrameSize: 16 << 20,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // renderers load from this host or a file:// shell
	},
}

// serveWS upgrades the request and runs the window until it disconnects.
func (s *Server) serveWS(c *gin.Context) {
	if !s.acquireConn() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "host shutting down"})
		return
	}
	defer s.conns.Done()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	w := newWindow(c.ClientIP(), s.ws.Buffer)
	s.hub.add(w)
	defer s.hub.remove(w.ID)

	ctx, cancel := context.WithCancel(s.baseCtx)
	defer cancel()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readPump(ctx, conn, w)
		cancel()
	}()
	s.writePump(ctx, conn, w)
	_ = conn.Close()
	<-readDone
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, w *Window) {
	ticker := time.NewTicker(s.ws.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(s.ws.WriteTimeout))
			return

		case env := <-w.send:
			data, err := message.Encode(env)
			if err != nil {
				s.logger.Error("encode envelope", zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.ws.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("window write failed", zap.String("window", w.ID.String()), zap.Error(err))
				return
			}
			s.metrics.RecordEnvelopeSent(env.Type.String())

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.ws.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, w *Window) {
	conn.SetReadLimit(s.ws.MaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))
	})

	for ctx.Err() == nil {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("window read ended", zap.String("window", w.ID.String()), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.ws.ReadTimeout))

		env, err := message.Decode(data)
		if err != nil {
			s.logger.Warn("skipping malformed frame", zap.String("window", w.ID.String()), zap.Error(err))
			continue
		}
		if err := s.hub.Handle(ctx, w, env); err != nil {
			s.logger.Warn("envelope rejected",
				zap.String("window", w.ID.String()),
				zap.String("type", env.Type.String()),
				zap.Error(err),
			)
		}
	}
}
