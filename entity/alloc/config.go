package alloc

import "github.com/google/uuid"

type Config struct {
	// Realm identifies the identity space this allocator draws from. Two
	// allocators sharing a realm hand out overlapping identifiers, so
	// service code is expected to fix one realm per store. Snapshots record
	// the realm and refuse to restore across realms.
	Realm uuid.UUID

	// SlotLimit caps how many distinct slots the allocator may ever extend
	// to. Zero means the full addressable range. The generation table holds
	// one word per extended slot, so lowering this bounds memory as well as
	// the live population. Values above the addressable range are clamped.
	SlotLimit uint32
}

const (
	// MaxSlotCount is the absolute extension limit. It stops one short of
	// the placeholder index, which must never be issued, and two short of
	// the reserved pattern, which is not a slot at all.
	MaxSlotCount uint32 = 1<<32 - 2
)

// maxSlots returns the effective extension limit for this configuration.
func (cfg Config) maxSlots() uint32 {
	if cfg.SlotLimit == 0 || cfg.SlotLimit > MaxSlotCount {
		return MaxSlotCount
	}
	return cfg.SlotLimit
}
