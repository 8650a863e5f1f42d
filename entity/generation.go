package entity

import "strconv"

// Generation counts how many times a storage slot has been freed and reused.
// Every 32 bit pattern is a valid generation, so construction and decoding
// are total and the type is a bare counter rather than an opaque struct. The
// zero value is GenerationMin, which is what a freshly assigned slot
// carries.
type Generation uint32

// NewGeneration stores value unchanged. It cannot fail.
func NewGeneration(value uint32) Generation {
	return Generation(value)
}

// GenerationFromBits reinterprets a stored pattern as a Generation. For
// generations the stored pattern is the value itself, so this is the same
// total function as NewGeneration. It exists so that both identifier fields
// expose the same bits oriented surface.
func GenerationFromBits(bits uint32) Generation {
	return Generation(bits)
}

// Get returns the counter value.
func (g Generation) Get() uint32 {
	return uint32(g)
}

// Bits returns the stored pattern, which for generations equals the value.
func (g Generation) Bits() uint32 {
	return uint32(g)
}

func (g Generation) String() string {
	return strconv.FormatUint(uint64(g), 10)
}
