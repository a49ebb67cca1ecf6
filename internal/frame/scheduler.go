package frame

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kk-code-lab/seqview/internal/imageutil"
	"github.com/kk-code-lab/seqview/internal/source"
)

// DecodeFunc turns raw frame bytes into a renderable frame.
type DecodeFunc func(data []byte) (*imageutil.Frame, error)

// Scheduler turns wanted indices into exactly one in-flight fetch+decode
// task each, executed on background workers. Workers pull the queued index
// closest to the window center first, so a jump fills what the user is
// looking at before the periphery.
//
// The worker count is a policy decision made at construction: remote
// sources get exactly one worker, keeping the persistent session's
// commands strictly serialized system-wide; local sources get a small
// pool since filesystem reads are independent.
type Scheduler struct {
	src     source.Source
	decode  DecodeFunc
	deliver func(Result)
	logger  *zap.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []uint64
	inflight map[uint64]struct{}
	center    uint64
	minWant   uint64
	maxWant   uint64
	direction int
	closed    bool
	wg        sync.WaitGroup
}

// NewScheduler starts workers goroutines that feed deliver with results.
// deliver is called from worker goroutines; it must hand off to the
// interactive side without blocking for long.
func NewScheduler(src source.Source, decode DecodeFunc, workers int, deliver func(Result), logger *zap.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		src:       src,
		decode:    decode,
		deliver:   deliver,
		logger:    logger,
		inflight:  make(map[uint64]struct{}),
		maxWant:   ^uint64(0),
		direction: 1,
	}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Request enqueues idx unless a task for it is already queued or in
// flight. Reports whether a new task was created.
func (s *Scheduler) Request(idx uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, ok := s.inflight[idx]; ok {
		return false
	}
	s.inflight[idx] = struct{}{}
	s.queue = append(s.queue, idx)
	s.cond.Signal()
	return true
}

// SetWindow records the wanted index range and its center. Queued indices
// outside the range are dropped before dispatch; in-flight fetches cannot
// be aborted (the remote protocol has no abort message), so their results
// are discarded on delivery instead.
func (s *Scheduler) SetWindow(center, min, max uint64, direction int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = center
	s.minWant = min
	s.maxWant = max
	if direction != 0 {
		s.direction = direction
	}
	kept := s.queue[:0]
	for _, idx := range s.queue {
		if idx >= min && idx <= max {
			kept = append(kept, idx)
			continue
		}
		delete(s.inflight, idx)
	}
	s.queue = kept
}

// Close stops the workers and waits for them. In-flight fetches finish;
// their results are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		idx := s.takeNearestLocked()
		s.mu.Unlock()

		res := s.load(idx)

		s.mu.Lock()
		delete(s.inflight, idx)
		stale := s.closed || idx < s.minWant || idx > s.maxWant
		s.mu.Unlock()

		if stale {
			s.logger.Debug("dropped stale result", zap.Uint64("index", idx))
			continue
		}
		s.deliver(res)
	}
}

// takeNearestLocked removes and returns the queued index closest to the
// window center; equal distances prefer the most recent navigation
// direction. Windows are small, so a linear scan is fine.
func (s *Scheduler) takeNearestLocked() uint64 {
	best := 0
	for i := 1; i < len(s.queue); i++ {
		if s.closerLocked(s.queue[i], s.queue[best]) {
			best = i
		}
	}
	idx := s.queue[best]
	s.queue[best] = s.queue[len(s.queue)-1]
	s.queue = s.queue[:len(s.queue)-1]
	return idx
}

func (s *Scheduler) closerLocked(a, b uint64) bool {
	da, db := distance(a, s.center), distance(b, s.center)
	if da != db {
		return da < db
	}
	if s.direction >= 0 {
		return a > b
	}
	return a < b
}

func distance(a, center uint64) uint64 {
	if a >= center {
		return a - center
	}
	return center - a
}

func (s *Scheduler) load(idx uint64) Result {
	data, err := s.src.Fetch(idx)
	if err != nil {
		return Result{Index: idx, Err: err}
	}
	frame, err := s.decode(data)
	if err != nil {
		return Result{Index: idx, Err: fmt.Errorf("decode frame %d: %w", idx, err)}
	}
	return Result{Index: idx, Frame: frame}
}
