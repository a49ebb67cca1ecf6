package frame

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/kk-code-lab/seqview/internal/source"
)

// requester is the slice of the Scheduler the cache drives. Split out so
// cache tests can observe request traffic without real workers.
type requester interface {
	Request(idx uint64) bool
	SetWindow(center, min, max uint64, direction int)
}

// Cache keeps frames for the window
// [center-radius*step, center+radius*step] resident and answers readiness
// queries without blocking. Slot mutation happens on the SetCenter and
// Apply paths; Poll hands out snapshots, so the interactive thread never
// holds a slot across a redraw.
type Cache struct {
	mu        sync.Mutex
	slots     map[uint64]Slot
	center    uint64
	radius    uint64
	step      uint64
	direction int
	sched     requester
	logger    *zap.Logger
}

// NewCache builds a cache with the given radius. Radius is fixed for the
// life of the sequence; a new sequence gets a new cache.
func NewCache(radius uint64, sched requester, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		slots:     make(map[uint64]Slot),
		radius:    radius,
		step:      1,
		direction: 1,
		sched:     sched,
		logger:    logger,
	}
}

// SetCenter recenters the window on idx: out-of-range slots are evicted,
// missing in-range indices are requested nearest-first. Returns how many
// requests were launched and how many slots were evicted.
func (c *Cache) SetCenter(idx uint64) (requested, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx > c.center {
		c.direction = 1
	} else if idx < c.center {
		c.direction = -1
	}
	c.center = idx
	return c.settleLocked()
}

// settleLocked pushes the window bounds to the scheduler, evicts, and
// requests, using the current center/step/direction.
func (c *Cache) settleLocked() (requested, evicted int) {
	min, max := c.windowLocked()
	c.sched.SetWindow(c.center, min, max, c.direction)

	for idx := range c.slots {
		if idx < min || idx > max {
			delete(c.slots, idx)
			evicted++
		}
	}

	for _, idx := range c.wantedOrderLocked(min, max) {
		if _, ok := c.slots[idx]; ok {
			continue
		}
		c.slots[idx] = Slot{Index: idx, State: SlotPending}
		c.sched.Request(idx)
		requested++
	}

	if requested > 0 || evicted > 0 {
		c.logger.Debug("window settled",
			zap.Uint64("center", c.center),
			zap.Int("requested", requested),
			zap.Int("evicted", evicted))
	}
	return requested, evicted
}

// windowLocked computes the wanted range with saturation at both ends.
func (c *Cache) windowLocked() (min, max uint64) {
	span := c.radius * c.step
	if c.radius != 0 && span/c.radius != c.step {
		span = math.MaxUint64
	}
	min = c.center - span
	if min > c.center {
		min = 0
	}
	max = c.center + span
	if max < c.center {
		max = math.MaxUint64
	}
	return min, max
}

// wantedOrderLocked yields the in-window indices nearest-first: the center,
// then each offset with the most recent navigation direction preferred on
// ties.
func (c *Cache) wantedOrderLocked(min, max uint64) []uint64 {
	order := make([]uint64, 0, 2*c.radius+1)
	order = append(order, c.center)
	for offset := uint64(1); offset <= c.radius; offset++ {
		span := offset * c.step
		forward := c.center + span
		backward := c.center - span
		hasForward := forward >= c.center && forward <= max
		hasBackward := backward <= c.center && backward >= min
		if c.direction >= 0 {
			if hasForward {
				order = append(order, forward)
			}
			if hasBackward {
				order = append(order, backward)
			}
		} else {
			if hasBackward {
				order = append(order, backward)
			}
			if hasForward {
				order = append(order, forward)
			}
		}
	}
	return order
}

// Apply records a load result. Stale results are dropped: the slot must
// still exist (not evicted) and still be pending.
func (c *Cache) Apply(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[res.Index]
	if !ok || slot.State != SlotPending {
		return false
	}
	c.slots[res.Index] = resultSlot(res)
	return true
}

// resultSlot classifies a result into its terminal slot. Absence becomes
// Missing with the reason kept; every other failure is Failed.
func resultSlot(res Result) Slot {
	if res.Err == nil {
		return Slot{Index: res.Index, State: SlotReady, Image: res.Frame}
	}
	state := SlotFailed
	if fe, ok := source.AsError(res.Err); ok && fe.Kind == source.KindNotFound {
		state = SlotMissing
	}
	return Slot{Index: res.Index, State: state, Err: res.Err}
}

// Poll returns a snapshot of the slot for idx. ok is false when the index
// is not resident (outside the window, or never requested).
func (c *Cache) Poll(idx uint64) (Slot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[idx]
	return slot, ok
}

// SetStepSize changes the navigation multiplier. The window is rebuilt
// around the current center; everything except the center frame is
// dropped, since the old neighbors are no longer the wanted ones.
func (c *Cache) SetStepSize(step uint64) {
	if step < 1 {
		step = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if step == c.step {
		return
	}
	c.step = step
	for idx := range c.slots {
		if idx != c.center {
			delete(c.slots, idx)
		}
	}
	c.settleLocked()
}

// StepSize returns the current navigation multiplier.
func (c *Cache) StepSize() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Invalidate drops every slot and re-fetches the whole window. Used when
// the sequence address changes out from under the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make(map[uint64]Slot)
	c.settleLocked()
}

// Counts reports resident slot totals for the status line.
func (c *Cache) Counts() (ready, pending int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slot := range c.slots {
		switch slot.State {
		case SlotReady:
			ready++
		case SlotPending:
			pending++
		}
	}
	return ready, pending
}

// Settled reports whether every requested slot has reached a terminal
// state.
func (c *Cache) Settled() bool {
	_, pending := c.Counts()
	return pending == 0
}
