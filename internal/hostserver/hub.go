package hostserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/domain/message"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/viewsync/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/GriffinCanCode/viewsync/internal/shared/utils"
	"go.uber.org/zap"
)

var (
	// ErrWindowNotFound is returned when pushing to an unknown window.
	ErrWindowNotFound = errors.New("window not found")
	// ErrWindowBusy is returned when a window's outbound buffer is full.
	ErrWindowBusy = errors.New("window outbound buffer full")
)

// recentIDs is how many envelope ids a window remembers for dropping
// resends.
const recentIDs = 64

// WindowState is what the host has learned about a window from its
// envelopes.
type WindowState struct {
	App        types.AppSnapshot         `json:"app"`
	ProjectID  string                    `json:"projectId,omitempty"`
	History    message.HistoryChanged    `json:"history"`
	Screenshot *message.ChromeScreenShot `json:"screenshot,omitempty"`
	LastSeen   time.Time                 `json:"lastSeen"`
	Received   int64                     `json:"received"`
}

// WindowInfo is a point-in-time copy of a window for the API.
type WindowInfo struct {
	ID          id.WindowID `json:"id"`
	RemoteAddr  string      `json:"remoteAddr"`
	ConnectedAt time.Time   `json:"connectedAt"`
	Focused     bool        `json:"focused"`
	State       WindowState `json:"state"`
}

// Window is one connected renderer.
type Window struct {
	ID          id.WindowID
	RemoteAddr  string
	ConnectedAt time.Time

	send chan message.Envelope

	mu     sync.Mutex
	state  WindowState
	recent [recentIDs]id.EnvelopeID
	next   int
}

func newWindow(remote string, buffer int) *Window {
	now := time.Now()
	return &Window{
		ID:          id.NewWindowID(),
		RemoteAddr:  remote,
		ConnectedAt: now,
		send:        make(chan message.Envelope, buffer),
		state:       WindowState{LastSeen: now},
	}
}

// remember records eid and reports whether it was already among the
// window's recent envelopes. Callers hold w.mu.
func (w *Window) remember(eid id.EnvelopeID) bool {
	if eid == "" {
		return false
	}
	for _, seen := range w.recent {
		if seen == eid {
			return true
		}
	}
	w.recent[w.next] = eid
	w.next = (w.next + 1) % recentIDs
	return false
}

// Hub tracks connected windows and which of them has focus.
type Hub struct {
	mu          sync.RWMutex
	windows     map[id.WindowID]*Window // Protected by mu
	focusedID   id.WindowID             // Protected by mu
	focusedHash string                  // Protected by mu

	hasher  *utils.Hasher
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		windows: make(map[id.WindowID]*Window),
		hasher:  utils.FastHasher(),
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (h *Hub) add(w *Window) {
	h.mu.Lock()
	h.windows[w.ID] = w
	n := len(h.windows)
	h.mu.Unlock()

	h.metrics.SetWindows(n)
	h.logger.Info("window connected",
		zap.String("window", w.ID.String()),
		zap.String("remote", w.RemoteAddr),
		zap.Int("windows", n),
	)
}

func (h *Hub) remove(wid id.WindowID) {
	h.mu.Lock()
	delete(h.windows, wid)
	if h.focusedID == wid {
		h.focusedID = ""
		h.focusedHash = ""
	}
	n := len(h.windows)
	h.mu.Unlock()

	h.metrics.SetWindows(n)
	h.logger.Info("window disconnected", zap.String("window", wid.String()), zap.Int("windows", n))
}

// Len returns the number of connected windows.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.windows)
}

// Get returns a copy of one window.
func (h *Hub) Get(wid id.WindowID) (WindowInfo, bool) {
	h.mu.RLock()
	w, ok := h.windows[wid]
	focused := h.focusedID == wid
	h.mu.RUnlock()
	if !ok {
		return WindowInfo{}, false
	}
	return w.info(focused), true
}

// List returns copies of all windows in connection order.
func (h *Hub) List() []WindowInfo {
	h.mu.RLock()
	out := make([]WindowInfo, 0, len(h.windows))
	for wid, w := range h.windows {
		out = append(out, w.info(wid == h.focusedID))
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Focused returns the window that last reported a focus change.
func (h *Hub) Focused() (id.WindowID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.focusedID, h.focusedID != ""
}

// Push queues env for one window without blocking.
func (h *Hub) Push(wid id.WindowID, env message.Envelope) error {
	h.mu.RLock()
	w, ok := h.windows[wid]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrWindowNotFound, wid)
	}

	select {
	case w.send <- env:
		return nil
	default:
		h.metrics.RecordEnvelopeDropped(env.Type.String(), "window_busy")
		return fmt.Errorf("%w: %s", ErrWindowBusy, wid)
	}
}

// Broadcast queues env for every window and returns how many accepted it.
func (h *Hub) Broadcast(env message.Envelope) int {
	h.mu.RLock()
	ids := make([]id.WindowID, 0, len(h.windows))
	for wid := range h.windows {
		ids = append(ids, wid)
	}
	h.mu.RUnlock()

	sent := 0
	for _, wid := range ids {
		if err := h.Push(wid, env); err == nil {
			sent++
		}
	}
	return sent
}

// Handle processes one envelope received from w inside a trace span. A
// renderer resends an envelope under the same id when it cannot tell whether
// the first write landed; the copy is dropped.
func (h *Hub) Handle(ctx context.Context, w *Window, env message.Envelope) error {
	h.metrics.RecordEnvelopeReceived(env.Type.String())
	w.mu.Lock()
	w.state.LastSeen = time.Now()
	duplicate := w.remember(env.ID)
	if !duplicate {
		w.state.Received++
	}
	w.mu.Unlock()

	if duplicate {
		h.logger.Debug("dropping resent envelope",
			zap.String("window", w.ID.String()),
			zap.String("id", env.ID.String()),
			zap.String("type", env.Type.String()),
		)
		return nil
	}

	ref := tracing.EnvelopeRef{Window: w.ID.String(), Type: env.Type.String(), ID: env.ID.String()}
	return tracing.TraceEnvelope(ctx, h.tracer, ref, func(ctx context.Context) error {
		log := h.logger.With(zap.String("window", ref.Window))
		log = log.With(tracing.LogFields(ctx)...)
		switch env.Type {
		case message.TypeWindowFocused:
			return h.focus(log, w, env)
		case message.TypeChromeScreenShot:
			return h.screenshot(log, w, env)
		case message.TypeHistoryChanged:
			return h.history(log, w, env)
		default:
			log.Debug("unhandled envelope", zap.String("type", ref.Type))
			return nil
		}
	})
}

// focus records a window-focused report. Repeats of the same payload from
// the focused window are refreshes, not focus changes.
func (h *Hub) focus(log *zap.Logger, w *Window, env message.Envelope) error {
	var p message.WindowFocused
	if err := message.DecodePayload(env, &p); err != nil {
		return err
	}
	hash, err := h.hasher.HashJSON(p)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.state.App = p.App
	w.state.ProjectID = p.ProjectID
	w.mu.Unlock()

	h.mu.Lock()
	changed := h.focusedID != w.ID || h.focusedHash != hash
	h.focusedID = w.ID
	h.focusedHash = hash
	h.mu.Unlock()

	if !changed {
		log.Debug("focus refresh")
		return nil
	}

	h.metrics.IncFocusChanges()
	log.Info("window focused",
		zap.String("view", string(p.App.ActiveView)),
		zap.String("project", p.ProjectID),
		zap.String("state", utils.ShortHash(hash)),
	)
	return nil
}

func (h *Hub) screenshot(log *zap.Logger, w *Window, env message.Envelope) error {
	var p message.ChromeScreenShot
	if err := message.DecodePayload(env, &p); err != nil {
		return err
	}

	w.mu.Lock()
	w.state.Screenshot = &p
	w.mu.Unlock()

	log.Info("screenshot requested",
		zap.Int("width", p.Width),
		zap.Int("height", p.Height),
	)
	return nil
}

func (h *Hub) history(log *zap.Logger, w *Window, env message.Envelope) error {
	var p message.HistoryChanged
	if err := message.DecodePayload(env, &p); err != nil {
		return err
	}

	w.mu.Lock()
	w.state.History = p
	w.mu.Unlock()

	log.Debug("history changed",
		zap.Int("length", p.Length),
		zap.Int("cursor", p.Cursor),
		zap.Bool("canUndo", p.CanUndo),
		zap.Bool("canRedo", p.CanRedo),
	)
	return nil
}

func (w *Window) info(focused bool) WindowInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.state
	if st.Screenshot != nil {
		shot := *st.Screenshot
		st.Screenshot = &shot
	}
	return WindowInfo{
		ID:          w.ID,
		RemoteAddr:  w.RemoteAddr,
		ConnectedAt: w.ConnectedAt,
		Focused:     focused,
		State:       st,
	}
}
