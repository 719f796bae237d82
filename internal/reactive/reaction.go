package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Reaction is a named callback re-run whenever one of its subjects changes.
type Reaction struct {
	name  string
	fn    func()
	sched *Scheduler

	disposed atomic.Bool
	runs     atomic.Int64

	mu       sync.Mutex
	subjects []*Subject
}

// NewReaction creates a reaction that observes subjects. It does not run.
func (s *Scheduler) NewReaction(name string, fn func(), subjects ...*Subject) *Reaction {
	r := &Reaction{name: name, fn: fn, sched: s}
	r.Observe(subjects...)
	return r
}

// Autorun creates a reaction, runs it once and re-runs it after every batch
// in which one of subjects was notified.
func (s *Scheduler) Autorun(name string, fn func(), subjects ...*Subject) *Reaction {
	r := s.NewReaction(name, fn, subjects...)
	r.run()
	return r
}

// Name returns the reaction name.
func (r *Reaction) Name() string {
	return r.name
}

// Runs returns how many times the reaction has executed.
func (r *Reaction) Runs() int64 {
	return r.runs.Load()
}

// Observe adds subjects to the reaction's dependencies.
func (r *Reaction) Observe(subjects ...*Subject) {
	if r.disposed.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range subjects {
		if sub == nil {
			continue
		}
		sub.add(r)
		r.subjects = append(r.subjects, sub)
	}
}

// Dispose detaches the reaction. Pending runs are skipped.
func (r *Reaction) Dispose() {
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	subjects := r.subjects
	r.subjects = nil
	r.mu.Unlock()

	for _, sub := range subjects {
		sub.remove(r)
	}
}

// Disposed reports whether Dispose was called.
func (r *Reaction) Disposed() bool {
	return r.disposed.Load()
}

func (r *Reaction) run() {
	if r.disposed.Load() {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			r.sched.logger.Error("reaction panicked",
				zap.String("reaction", r.name),
				zap.String("panic", fmt.Sprint(p)),
			)
		}
	}()

	r.runs.Add(1)
	r.sched.metrics.RecordReactionRun(r.name)
	r.fn()
}
