package reactive

import "sync"

// Value is an observable cell. Set notifies only when the value changes.
type Value[T comparable] struct {
	subject *Subject

	mu sync.RWMutex
	v  T
}

// NewValue creates an observable cell with an initial value.
func NewValue[T comparable](s *Scheduler, name string, initial T) *Value[T] {
	return &Value[T]{subject: s.NewSubject(name), v: initial}
}

// Get returns the current value.
func (c *Value[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Set stores v and reports whether it changed.
func (c *Value[T]) Set(v T) bool {
	c.mu.Lock()
	if c.v == v {
		c.mu.Unlock()
		return false
	}
	c.v = v
	c.mu.Unlock()

	c.subject.Notify()
	return true
}

// Subject returns the subject notified on change.
func (c *Value[T]) Subject() *Subject {
	return c.subject
}
