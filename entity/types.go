package entity

import "errors"

const (
	// IndexReserved is the canonical index value that never denotes a real
	// slot. NewIndex rejects it, and EntityFromBits rejects any word whose
	// index field carries it. Zero values wrap onto it when read, so
	// unconstructed identifiers are refused by the same check.
	IndexReserved uint32 = 1<<32 - 1

	// EntityBytes is the width of the canonical encoding emitted by
	// MarshalBinary and consumed by UnmarshalBinary.
	EntityBytes = 8

	// GenerationMin and GenerationMax bound the recycle counter. Every value
	// between them is valid, there are no reserved generations.
	GenerationMin Generation = 0
	GenerationMax Generation = 1<<32 - 1
)

var (
	ErrIndexReserved = errors.New("entity: index is the reserved placeholder pattern")
	ErrIndexBits     = errors.New("entity: index bits must be non zero")
	ErrIndexRange    = errors.New("entity: value does not fit the index range")

	ErrEntityBytes = errors.New("entity: canonical encoding must be 8 bytes")
)
