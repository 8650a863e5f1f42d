package entity

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// One generic path covers the whole integer interop surface for Index. The
// two checks below subsume every width and signedness combination: a
// negative source can never be a slot, and a round trip through the target
// type detects both truncation and sign overflow.

// IndexFromInteger admits a slot value from any integer type. It fails with
// ErrIndexRange for negative values and for values beyond 32 bits, and with
// ErrIndexReserved for the reserved pattern itself. An unsigned source of 16
// bits or fewer can never fail.
func IndexFromInteger[T constraints.Integer](value T) (Index, error) {
	if value < 0 {
		return Index{}, fmt.Errorf("%d: %w", value, ErrIndexRange)
	}
	u := uint64(value)
	if u > uint64(IndexReserved) {
		return Index{}, fmt.Errorf("%d: %w", value, ErrIndexRange)
	}
	return NewIndex(uint32(u))
}

// IntegerFromIndex narrows the canonical slot value into any integer type,
// failing with ErrIndexRange when it does not fit. The canonical value of a
// constructed Index is at most 1<<32 - 2, so 64 bit targets always succeed.
func IntegerFromIndex[T constraints.Integer](index Index) (T, error) {
	v := uint64(index.Get())
	narrowed := T(v)
	if uint64(narrowed) != v {
		return 0, fmt.Errorf("index %d into %T: %w", v, narrowed, ErrIndexRange)
	}
	return narrowed, nil
}
