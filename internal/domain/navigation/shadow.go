package navigation

import (
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
)

// Navigator records navigation entries, like a browser history.
type Navigator interface {
	PushState(state types.AppSnapshot, title, path string)
}

// Shadow mirrors App state into a Navigator. It never mutates App or Project.
type Shadow struct {
	nav Navigator

	mu     sync.Mutex
	last   Entry
	pushed bool
}

// NewShadow creates a shadow writing to nav.
func NewShadow(nav Navigator) *Shadow {
	return &Shadow{nav: nav}
}

// Apply pushes the resolved target. It skips states with no address and
// repeats of the last pushed entry, and reports whether it pushed.
func (s *Shadow) Apply(app types.AppSnapshot, project *types.ProjectSnapshot) bool {
	target, ok := Resolve(app, project)
	if !ok {
		return false
	}

	entry := Entry{State: app, Title: target.Title, Path: target.Path}

	s.mu.Lock()
	if s.pushed && s.last == entry {
		s.mu.Unlock()
		return false
	}
	s.last = entry
	s.pushed = true
	s.mu.Unlock()

	s.nav.PushState(entry.State, entry.Title, entry.Path)
	return true
}

// Sync records e as the last pushed entry without pushing it, so the state
// a navigator popped to is not pushed again.
func (s *Shadow) Sync(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = e
	s.pushed = true
}

// Forget clears the last pushed entry.
func (s *Shadow) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = false
	s.last = Entry{}
}
