package entity

// When identifiers leave the process they travel as canonical bits: big
// endian bytes for storage keys and binary frames, hex for logs and text
// formats. This file contains the utilities for doing that safely. The
// stored offset form never appears in any encoded output.

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// MarshalBinary returns the canonical bits as 8 big endian bytes. Encoding
// is total; the zero Entity encodes to the reserved pattern, which
// UnmarshalBinary refuses, so an unconstructed identifier cannot sneak
// through a persist/load cycle.
func (e Entity) MarshalBinary() ([]byte, error) {
	b := make([]byte, EntityBytes)
	binary.BigEndian.PutUint64(b, e.ToBits())
	return b, nil
}

// UnmarshalBinary decodes 8 canonical big endian bytes. It fails with
// ErrEntityBytes for any other length and with ErrIndexReserved for the
// reserved index pattern.
func (e *Entity) UnmarshalBinary(data []byte) error {
	if len(data) != EntityBytes {
		return fmt.Errorf("%d bytes: %w", len(data), ErrEntityBytes)
	}
	decoded, err := EntityFromBits(binary.BigEndian.Uint64(data))
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// MarshalText encodes the canonical bits as 16 lower case hex characters,
// big endian digit order. This is the form used in logs, JSON and text keyed
// stores.
func (e Entity) MarshalText() ([]byte, error) {
	b, _ := e.MarshalBinary()
	return []byte(hex.EncodeToString(b)), nil
}

// UnmarshalText accepts the hex form, with or without a 0x prefix. Hex
// decoding errors propagate as is; a decoded length other than 8 bytes is
// ErrEntityBytes.
func (e *Entity) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	return e.UnmarshalBinary(b)
}

// EntityToHex returns the hex encoding of the canonical bits.
func EntityToHex(e Entity) string {
	b, _ := e.MarshalBinary()
	return hex.EncodeToString(b)
}

// EntityFromHex parses a hex encoded canonical word, with or without a 0x
// prefix.
func EntityFromHex(s string) (Entity, error) {
	var e Entity
	if err := e.UnmarshalText([]byte(s)); err != nil {
		return Entity{}, err
	}
	return e, nil
}
