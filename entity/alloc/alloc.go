package alloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/herabit/pillar/entity"
)

var (
	ErrSlotsExhausted = errors.New("alloc: no slot available within the configured limit")
	ErrNotAlive       = errors.New("alloc: identifier is not currently live")
)

type Allocator struct {
	Cfg Config
	Log logger.Logger

	mu sync.Mutex
	// generations holds, per extended slot, the counter the slot carries
	// while live, or will carry on its next issue once released. Slot values
	// index this table directly.
	generations []uint32
	// free holds released slots available for reuse, most recently released
	// last.
	free    []uint32
	live    *roaring.Bitmap
	retired *roaring.Bitmap
}

func New(cfg Config, log logger.Logger, opts ...Option) (*Allocator, error) {
	options := Options{}
	for _, o := range opts {
		o(&options)
	}

	a := &Allocator{
		Cfg:     cfg,
		Log:     log,
		live:    roaring.New(),
		retired: roaring.New(),
	}
	if options.PreallocateSlots > 0 {
		a.generations = make([]uint32, 0, options.PreallocateSlots)
	}
	if options.Snapshot != nil {
		if err := a.RestoreSnapshot(options.Snapshot); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Allocate issues a live identifier, recycling the most recently released
// slot before extending the table. It fails with ErrSlotsExhausted once
// every slot within the configured limit is live or retired.
func (a *Allocator) Allocate() (entity.Entity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		return a.wake(slot)
	}

	if uint64(len(a.generations)) >= uint64(a.Cfg.maxSlots()) {
		return entity.Entity{}, fmt.Errorf("%d slots extended: %w", len(a.generations), ErrSlotsExhausted)
	}
	slot := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	return a.wake(slot)
}

// wake issues the identifier for a slot known to be vacant. Caller holds mu.
func (a *Allocator) wake(slot uint32) (entity.Entity, error) {
	idx, err := entity.NewIndex(slot)
	if err != nil {
		return entity.Entity{}, err
	}
	a.live.Add(slot)
	return entity.NewEntity(idx, entity.NewGeneration(a.generations[slot])), nil
}

// Release invalidates the handle e. The slot's generation is bumped so stale
// copies of e stop matching; the slot returns to the free list unless the
// counter is exhausted, in which case the slot is retired from circulation
// for good. Stale, foreign, zero and placeholder handles all fail with
// ErrNotAlive.
func (a *Allocator) Release(e entity.Entity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot, ok := a.liveSlot(e)
	if !ok {
		return fmt.Errorf("%v: %w", e, ErrNotAlive)
	}

	a.live.Remove(slot)
	if a.generations[slot] == uint32(entity.GenerationMax) {
		// bumping would wrap the counter and repeat identifiers
		a.retired.Add(slot)
		a.Log.Debugf("slot %d retired, recycle counter exhausted", slot)
		return nil
	}
	a.generations[slot]++
	a.free = append(a.free, slot)
	return nil
}

// Alive reports whether e is the identifier currently issued for its slot.
func (a *Allocator) Alive(e entity.Entity) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.liveSlot(e)
	return ok
}

// Count returns the number of live identifiers.
func (a *Allocator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return int(a.live.GetCardinality())
}

// Range calls fn for every live identifier in ascending identifier order,
// stopping early when fn returns false. The allocator is locked for the
// duration, so fn must not call back into it.
func (a *Allocator) Range(fn func(entity.Entity) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.live.Iterate(func(slot uint32) bool {
		idx, err := entity.NewIndex(slot)
		if err != nil {
			return false
		}
		return fn(entity.NewEntity(idx, entity.NewGeneration(a.generations[slot])))
	})
}

// liveSlot resolves e to its slot value when e is live. Caller holds mu.
func (a *Allocator) liveSlot(e entity.Entity) (uint32, bool) {
	idx := e.Index()
	if idx.IsZero() || idx.IsPlaceholder() {
		return 0, false
	}
	slot := idx.Get()
	if uint64(slot) >= uint64(len(a.generations)) {
		return 0, false
	}
	if !a.live.Contains(slot) {
		return 0, false
	}
	if e.Generation().Get() != a.generations[slot] {
		return 0, false
	}
	return slot, true
}
