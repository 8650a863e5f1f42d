package entity

import "fmt"

// Entity is the composite identifier: an Index and the Generation the slot
// carried when the identifier was issued, packed into one 64 bit word. The
// stored word holds the index offset form in the upper half, so a
// constructed Entity never stores zero and the zero Entity means "no
// entity". The canonical form, with the offset removed, is what ToBits,
// FromBits and the encoding methods trade in.
type Entity struct {
	bits uint64
}

// Placeholder is the well formed, never allocated identifier used as a
// default/sentinel: the placeholder index with generation zero. It is a
// valid identifier and round trips through ToBits like any other.
var Placeholder = NewEntity(IndexPlaceholder, GenerationMin)

// NewEntity packs the pair into a single word. It is total and branch free:
// any Index value packs deterministically, and a zero Index yields a word
// whose canonical form carries the reserved pattern, so the invalidity
// survives encoding and is refused by the next EntityFromBits.
func NewEntity(index Index, generation Generation) Entity {
	return Entity{bits: uint64(index.Bits())<<32 | uint64(generation.Bits())}
}

// EntityFromBits decodes a canonical word. It fails if and only if the upper
// 32 bits are the reserved index pattern. Every other value decodes,
// including zero, which is slot 0 at generation 0.
func EntityFromBits(bits uint64) (Entity, error) {
	if uint32(bits>>32) == IndexReserved {
		return Entity{}, fmt.Errorf("%#016x: %w", bits, ErrIndexReserved)
	}
	return Entity{bits: bits + 1<<32}, nil
}

// ToBits returns the canonical encoding: the decoded index value in bits
// [63:32] and the generation in bits [31:0]. The internal offset is undone,
// so canonical bits are a pure function of the (index, generation) pair and
// are safe to persist or transmit. The zero Entity encodes to the reserved
// pattern, which EntityFromBits refuses.
func (e Entity) ToBits() uint64 {
	return e.bits - 1<<32
}

// Index returns the slot field.
func (e Entity) Index() Index {
	return Index{bits: uint32(e.bits >> 32)}
}

// Generation returns the recycle counter field.
func (e Entity) Generation() Generation {
	return Generation(uint32(e.bits))
}

// IsZero reports whether e is the zero value rather than a constructed
// identifier.
func (e Entity) IsZero() bool {
	return e.bits == 0
}

// IsPlaceholder reports whether e is the Placeholder identifier.
func (e Entity) IsPlaceholder() bool {
	return e == Placeholder
}

// Compare orders identifiers by canonical bits, which is exactly the
// lexicographic (index, generation) order: different slots order by slot,
// recycles of the same slot order by recency.
func (e Entity) Compare(o Entity) int {
	a, b := e.ToBits(), o.ToBits()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether e orders before o. See Compare.
func (e Entity) Less(o Entity) bool {
	return e.ToBits() < o.ToBits()
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.Index().Get(), e.Generation().Get())
}
