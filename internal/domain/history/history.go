package history

import (
	"errors"
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
)

var (
	// ErrNoHistory is returned by Undo when there is nothing before the cursor.
	ErrNoHistory = errors.New("no history to undo")
	// ErrNoFuture is returned by Redo when the cursor is at the tail.
	ErrNoFuture = errors.New("no future to redo")
)

// History is an ordered list of snapshots with a cursor. It stores and
// returns snapshots; applying them is the caller's job.
type History struct {
	mu       sync.RWMutex
	entries  []types.Snapshot
	cursor   int
	maxItems int
}

// New creates an empty history. maxItems <= 0 means unbounded.
func New(maxItems int) *History {
	return &History{cursor: -1, maxItems: maxItems}
}

// Commit drops everything after the cursor, appends a copy of snap and
// moves the cursor to it.
func (h *History) Commit(snap types.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], snap.Clone())
	h.cursor = len(h.entries) - 1

	if h.maxItems > 0 && len(h.entries) > h.maxItems {
		drop := len(h.entries) - h.maxItems
		h.entries = append([]types.Snapshot(nil), h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back and returns the snapshot there.
func (h *History) Undo() (types.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor <= 0 {
		return types.Snapshot{}, ErrNoHistory
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), nil
}

// Redo moves the cursor forward and returns the snapshot there.
func (h *History) Redo() (types.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries)-1 {
		return types.Snapshot{}, ErrNoFuture
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), nil
}

// Current returns the snapshot at the cursor.
func (h *History) Current() (types.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.cursor < 0 {
		return types.Snapshot{}, false
	}
	return h.entries[h.cursor].Clone(), true
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor < len(h.entries)-1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Cursor returns the cursor position, -1 when empty.
func (h *History) Cursor() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

// Stats is a point-in-time view of the history.
type Stats struct {
	CanUndo bool
	CanRedo bool
	Length  int
	Cursor  int
}

// Stats returns all counters under one lock.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		CanUndo: h.cursor > 0,
		CanRedo: h.cursor < len(h.entries)-1,
		Length:  len(h.entries),
		Cursor:  h.cursor,
	}
}
