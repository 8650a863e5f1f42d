package entity

import (
	"fmt"
	"strconv"
)

// Index names a storage slot. Canonical values range over [0, 1<<32 - 2];
// the all ones value IndexReserved is excluded so it can mark the
// placeholder. Internally the canonical value is stored offset by one, which
// keeps every constructed Index away from the zero pattern. The zero Index
// therefore means "no index": NewIndex and IndexFromBits never produce it,
// and IsZero detects it.
type Index struct {
	bits uint32
}

var (
	// IndexMin is the lowest addressable slot, canonical value 0.
	IndexMin = Index{bits: 1}

	// IndexMax is the highest addressable slot, canonical value 1<<32 - 2.
	// Note that its stored offset form is the reserved pattern itself.
	IndexMax = Index{bits: IndexReserved}

	// IndexPlaceholder is the never allocated sentinel slot. It aliases
	// IndexMax.
	IndexPlaceholder = IndexMax
)

// NewIndex validates and stores a canonical slot value. It fails only for
// IndexReserved; every other value succeeds.
func NewIndex(value uint32) (Index, error) {
	if value == IndexReserved {
		return Index{}, fmt.Errorf("%d: %w", value, ErrIndexReserved)
	}
	return Index{bits: value + 1}, nil
}

// IndexFromBits reconstructs an Index from its stored offset form, as
// returned by Bits. It fails only for zero, which is the one pattern no
// constructed Index stores.
func IndexFromBits(bits uint32) (Index, error) {
	if bits == 0 {
		return Index{}, ErrIndexBits
	}
	return Index{bits: bits}, nil
}

// Get returns the canonical slot value. For the zero Index, which the
// constructors never produce, the subtraction wraps to IndexReserved, so
// even that misuse decodes to a value that never names a real slot.
func (i Index) Get() uint32 {
	return i.bits - 1
}

// Bits returns the stored offset form, the canonical value plus one. It is
// the input IndexFromBits expects and is zero only for the zero Index.
func (i Index) Bits() uint32 {
	return i.bits
}

// IsZero reports whether i is the zero value rather than a constructed
// Index.
func (i Index) IsZero() bool {
	return i.bits == 0
}

// IsPlaceholder reports whether i is the reserved placeholder slot.
func (i Index) IsPlaceholder() bool {
	return i == IndexPlaceholder
}

// Compare orders indexes by canonical value. Over constructed indexes this
// agrees with the order of the stored offset form, the offset is the same
// for all of them.
func (i Index) Compare(o Index) int {
	a, b := i.Get(), o.Get()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether i orders before o. See Compare.
func (i Index) Less(o Index) bool {
	return i.Get() < o.Get()
}

func (i Index) String() string {
	return strconv.FormatUint(uint64(i.Get()), 10)
}
