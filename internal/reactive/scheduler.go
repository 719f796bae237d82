package reactive

import (
	"sync"

	"github.com/GriffinCanCode/viewsync/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// MaxFlushPasses bounds how many times one flush re-runs reactions that
// were scheduled by other reactions before it gives up.
const MaxFlushPasses = 100

// Scheduler batches subject notifications and runs the affected reactions
// once the outermost batch ends. A reaction scheduled several times inside
// one batch runs once.
//
// Mutations are expected from a single goroutine at a time (see Loop).
type Scheduler struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu       sync.Mutex
	depth    int
	flushing bool
	pending  []*Reaction
	queued   map[*Reaction]struct{}
}

// NewScheduler creates a scheduler. Both arguments may be nil.
func NewScheduler(logger *zap.Logger, metrics *monitoring.Metrics) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:  logger,
		metrics: metrics,
		queued:  make(map[*Reaction]struct{}),
	}
}

// Batch runs fn and defers reactions until the outermost batch returns.
func (s *Scheduler) Batch(fn func()) {
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()

	defer s.endBatch()
	fn()
}

// InBatch reports whether a batch is open.
func (s *Scheduler) InBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// Pending returns the number of reactions waiting for the next flush.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) endBatch() {
	s.mu.Lock()
	s.depth--
	start := s.claimFlushLocked()
	s.mu.Unlock()

	if start {
		s.flush()
	}
}

// schedule queues r and flushes right away when no batch is open.
func (s *Scheduler) schedule(r *Reaction) {
	s.mu.Lock()
	if _, ok := s.queued[r]; !ok {
		s.queued[r] = struct{}{}
		s.pending = append(s.pending, r)
	}
	start := s.claimFlushLocked()
	s.mu.Unlock()

	if start {
		s.flush()
	}
}

func (s *Scheduler) claimFlushLocked() bool {
	if s.depth > 0 || s.flushing || len(s.pending) == 0 {
		return false
	}
	s.flushing = true
	return true
}

func (s *Scheduler) flush() {
	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	s.metrics.IncFlushes()

	for pass := 0; ; pass++ {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		for _, r := range batch {
			delete(s.queued, r)
		}
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		if pass >= MaxFlushPasses {
			names := make([]string, 0, len(batch))
			for _, r := range batch {
				names = append(names, r.name)
			}
			s.logger.Error("reaction loop did not settle, dropping pending reactions",
				zap.Int("passes", pass),
				zap.Strings("reactions", names),
			)
			return
		}

		for _, r := range batch {
			r.run()
		}
	}
}
