package hostserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/boot"
	"github.com/GriffinCanCode/viewsync/internal/domain/library"
	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/GriffinCanCode/viewsync/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pushRequest is the body of POST /windows/:id/envelopes.
type pushRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Root serves the splash boot page.
func (s *Server) Root(c *gin.Context) {
	s.writePage(c, http.StatusOK, boot.Payload{Host: s.hostType})
}

// ProjectPage serves a boot page with the project loaded in its detail
// view. Unknown projects get the splash page with a 404 status.
func (s *Server) ProjectPage(c *gin.Context) {
	projectID := c.Param("id")
	if err := utils.ValidateID(projectID, "project_id"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.library.Find(c.Request.Context(), projectID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, library.ErrProjectNotFound) {
			status = http.StatusNotFound
		} else {
			s.logger.Error("project lookup failed", zap.String("project", projectID), zap.Error(err))
		}
		s.writePage(c, status, boot.Payload{Host: s.hostType})
		return
	}

	s.writePage(c, http.StatusOK, boot.Payload{
		Host:    s.hostType,
		View:    types.ViewPageDetail,
		Project: &snap,
	})
}

func (s *Server) writePage(c *gin.Context, status int, p boot.Payload) {
	page, err := s.pages.render(p)
	if err != nil {
		s.logger.Error("render boot page", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", page)
}

// Health reports liveness and window count.
func (s *Server) Health(c *gin.Context) {
	focused, _ := s.hub.Focused()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"windows": s.hub.Len(),
		"focused": focused,
		"metrics": s.metrics.Snapshot(),
	})
}

// ListWindows lists connected windows.
func (s *Server) ListWindows(c *gin.Context) {
	windows := s.hub.List()
	c.JSON(http.StatusOK, gin.H{
		"windows": windows,
		"count":   len(windows),
	})
}

// GetWindow returns one window.
func (s *Server) GetWindow(c *gin.Context) {
	windowID, err := id.ParseWindowID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, ok := s.hub.Get(windowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// PushEnvelope sends an envelope to one window.
func (s *Server) PushEnvelope(c *gin.Context) {
	windowID, err := id.ParseWindowID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(s.envelopes.MaxSize())+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if err := s.envelopes.Validate(body); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, utils.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.logger.Debug("rejected pushed envelope",
			append(tracing.LogFields(c.Request.Context()), zap.Stringer("window", windowID), zap.Error(err))...)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var req pushRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateType(req.Type); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payload any
	if len(req.Payload) > 0 && string(req.Payload) != "null" {
		payload = req.Payload
	}
	env, err := message.New(message.Type(req.Type), payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.hub.Push(windowID, env); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrWindowNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrWindowBusy):
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     env.ID,
		"type":   env.Type,
		"window": windowID,
	})
}

// ListProjects lists the project files in the library.
func (s *Server) ListProjects(c *gin.Context) {
	entries, err := s.library.Scan(c.Request.Context())
	if err != nil {
		s.logger.Error("scan library", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": entries,
		"count":    len(entries),
		"root":     s.library.Root(),
	})
}
