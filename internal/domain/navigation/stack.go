package navigation

import (
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
)

// Entry is one navigation record.
type Entry struct {
	State types.AppSnapshot
	Title string
	Path  string
}

// PopListener is called with the entry the stack moved to.
type PopListener func(Entry)

// Stack is an in-memory navigation history. PushState drops forward
// entries; Back and Forward move the cursor and notify pop listeners.
type Stack struct {
	mu        sync.Mutex
	entries   []Entry
	index     int
	listeners []PopListener
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{index: -1}
}

// PushState records a new entry after the current one.
func (s *Stack) PushState(state types.AppSnapshot, title, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries[:s.index+1], Entry{State: state, Title: title, Path: path})
	s.index = len(s.entries) - 1
}

// OnPop registers a listener for Back and Forward.
func (s *Stack) OnPop(l PopListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Back moves one entry back. It reports false at the start.
func (s *Stack) Back() bool {
	return s.Go(-1)
}

// Forward moves one entry forward. It reports false at the end.
func (s *Stack) Forward() bool {
	return s.Go(1)
}

// Go moves delta entries. Out-of-range moves do nothing.
func (s *Stack) Go(delta int) bool {
	s.mu.Lock()
	next := s.index + delta
	if delta == 0 || next < 0 || next >= len(s.entries) {
		s.mu.Unlock()
		return false
	}
	s.index = next
	entry := s.entries[next]
	listeners := make([]PopListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(entry)
	}
	return true
}

// Current returns the entry at the cursor.
func (s *Stack) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return Entry{}, false
	}
	return s.entries[s.index], true
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
