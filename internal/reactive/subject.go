package reactive

import "sync"

// Subject is an observable source. Notify schedules every reaction that
// observes it.
type Subject struct {
	name  string
	sched *Scheduler

	mu        sync.Mutex
	observers []*Reaction
}

// NewSubject creates a subject bound to this scheduler.
func (s *Scheduler) NewSubject(name string) *Subject {
	return &Subject{name: name, sched: s}
}

// Name returns the subject name.
func (sub *Subject) Name() string {
	return sub.name
}

// Notify schedules all observers.
func (sub *Subject) Notify() {
	sub.mu.Lock()
	observers := make([]*Reaction, len(sub.observers))
	copy(observers, sub.observers)
	sub.mu.Unlock()

	for _, r := range observers {
		sub.sched.schedule(r)
	}
}

// Observers returns the number of live observers.
func (sub *Subject) Observers() int {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return len(sub.observers)
}

func (sub *Subject) add(r *Reaction) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	for _, o := range sub.observers {
		if o == r {
			return
		}
	}
	sub.observers = append(sub.observers, r)
}

func (sub *Subject) remove(r *Reaction) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	for i, o := range sub.observers {
		if o == r {
			sub.observers = append(sub.observers[:i], sub.observers[i+1:]...)
			return
		}
	}
}
