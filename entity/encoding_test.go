package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityBinaryRoundTrip(t *testing.T) {
	for _, e := range testEntities(t) {
		b, err := e.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, b, EntityBytes)

		var got Entity
		require.NoError(t, got.UnmarshalBinary(b))
		require.Equalf(t, e, got, "entity %v", e)
	}
}

func TestEntityBinaryRejectsBadInputs(t *testing.T) {
	var e Entity
	require.ErrorIs(t, e.UnmarshalBinary(nil), ErrEntityBytes)
	require.ErrorIs(t, e.UnmarshalBinary(make([]byte, EntityBytes-1)), ErrEntityBytes)
	require.ErrorIs(t, e.UnmarshalBinary(make([]byte, EntityBytes+1)), ErrEntityBytes)

	reserved := []byte{0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2a}
	require.ErrorIs(t, e.UnmarshalBinary(reserved), ErrIndexReserved)
}

func TestEntityBinaryIsCanonicalBigEndian(t *testing.T) {
	idx, err := NewIndex(5)
	require.NoError(t, err)

	b, err := NewEntity(idx, NewGeneration(2)).MarshalBinary()
	require.NoError(t, err)

	// index in the leading four bytes, generation in the trailing four,
	// no trace of the stored offset form
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x02}, b)
}

func TestEntityHexRoundTrip(t *testing.T) {
	idx, err := NewIndex(5)
	require.NoError(t, err)
	e := NewEntity(idx, NewGeneration(2))

	require.Equal(t, "0000000500000002", EntityToHex(e))

	got, err := EntityFromHex("0000000500000002")
	require.NoError(t, err)
	require.Equal(t, e, got)

	got, err = EntityFromHex("0x0000000500000002")
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestEntityHexRejectsBadInputs(t *testing.T) {
	_, err := EntityFromHex("zz00000500000002")
	require.Error(t, err)

	_, err = EntityFromHex("00000005000000")
	require.ErrorIs(t, err, ErrEntityBytes)

	_, err = EntityFromHex("ffffffff00000000")
	require.ErrorIs(t, err, ErrIndexReserved)
}

func TestEntityTextInJSON(t *testing.T) {
	idx, err := NewIndex(300)
	require.NoError(t, err)
	e := NewEntity(idx, NewGeneration(7))

	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t, `"0000012c00000007"`, string(b))

	var got Entity
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, e, got)
}

func TestEntityZeroValueEncodesReserved(t *testing.T) {
	var zero Entity
	b, err := zero.MarshalBinary()
	require.NoError(t, err)

	// encode is total, decode is where the zero value is caught
	var got Entity
	require.ErrorIs(t, got.UnmarshalBinary(b), ErrIndexReserved)
}
