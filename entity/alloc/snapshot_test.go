package alloc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herabit/pillar/entity"
)

// testPopulation drives the allocator through extension, release and one
// recycle. On return the free list holds slot 2 and slots 0,1,3,4,5 are
// live, slot 4 on its second generation.
func testPopulation(t *testing.T, a *Allocator) (live []entity.Entity, stale []entity.Entity) {
	t.Helper()

	var issued []entity.Entity
	for i := 0; i < 6; i++ {
		e, err := a.Allocate()
		require.NoError(t, err)
		issued = append(issued, e)
	}
	require.NoError(t, a.Release(issued[2]))
	require.NoError(t, a.Release(issued[4]))
	stale = []entity.Entity{issued[2], issued[4]}
	live = []entity.Entity{issued[0], issued[1], issued[3], issued[5]}

	// recycle the most recently released slot so the free list is non trivial
	e, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, issued[4].Index(), e.Index())
	live = append(live, e)
	return live, stale
}

func TestSnapshotRoundTrip(t *testing.T) {
	a, tc := newTestAllocator(t, Config{})
	live, stale := testPopulation(t, a)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint32(6), snap.SlotCount)

	codec, err := NewSnapshotCodec()
	require.NoError(t, err)
	data, err := EncodeSnapshot(codec, snap)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(codec, data)
	require.NoError(t, err)

	restored, err := New(a.Cfg, tc.Log, WithSnapshot(decoded))
	require.NoError(t, err)

	require.Equal(t, a.Count(), restored.Count())
	for _, e := range live {
		require.Truef(t, restored.Alive(e), "entity %v", e)
	}
	for _, e := range stale {
		require.Falsef(t, restored.Alive(e), "entity %v", e)
	}

	// both allocators continue identically from the captured state
	ea, err := a.Allocate()
	require.NoError(t, err)
	eb, err := restored.Allocate()
	require.NoError(t, err)
	require.Equal(t, ea, eb)
}

func TestSnapshotDeterministicEncoding(t *testing.T) {
	a, _ := newTestAllocator(t, Config{})
	testPopulation(t, a)

	codec, err := NewSnapshotCodec()
	require.NoError(t, err)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	first, err := EncodeSnapshot(codec, snap)
	require.NoError(t, err)

	again, err := a.Snapshot()
	require.NoError(t, err)
	second, err := EncodeSnapshot(codec, again)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestSnapshotEmptyAllocator(t *testing.T) {
	a, tc := newTestAllocator(t, Config{})

	snap, err := a.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint32(0), snap.SlotCount)

	restored, err := New(a.Cfg, tc.Log, WithSnapshot(snap))
	require.NoError(t, err)
	require.Equal(t, 0, restored.Count())

	e, err := restored.Allocate()
	require.NoError(t, err)
	require.Equal(t, uint32(0), e.Index().Get())
}

func TestSnapshotRealmMismatch(t *testing.T) {
	a, tc := newTestAllocator(t, Config{})
	testPopulation(t, a)

	snap, err := a.Snapshot()
	require.NoError(t, err)

	other, err := New(Config{Realm: tc.NewRealm()}, tc.Log)
	require.NoError(t, err)
	require.ErrorIs(t, other.RestoreSnapshot(snap), ErrRealmMismatch)

	// the construction path refuses just the same
	_, err = New(Config{Realm: tc.NewRealm()}, tc.Log, WithSnapshot(snap))
	require.ErrorIs(t, err, ErrRealmMismatch)
}

func TestSnapshotVersionRejection(t *testing.T) {
	a, _ := newTestAllocator(t, Config{})
	testPopulation(t, a)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	snap.Version = SnapshotVersion + 1

	require.ErrorIs(t, a.RestoreSnapshot(snap), ErrSnapshotVersion)

	codec, err := NewSnapshotCodec()
	require.NoError(t, err)
	data, err := EncodeSnapshot(codec, snap)
	require.NoError(t, err)
	_, err = DecodeSnapshot(codec, data)
	require.ErrorIs(t, err, ErrSnapshotVersion)
}

func TestSnapshotRespectsSlotLimit(t *testing.T) {
	a, tc := newTestAllocator(t, Config{})
	testPopulation(t, a)

	snap, err := a.Snapshot()
	require.NoError(t, err)

	// six extended slots cannot restore into a two slot space
	limited, err := New(Config{Realm: a.Cfg.Realm, SlotLimit: 2}, tc.Log)
	require.NoError(t, err)
	require.ErrorIs(t, limited.RestoreSnapshot(snap), ErrSnapshotLimit)
	require.Equal(t, 0, limited.Count())

	_, err = New(Config{Realm: a.Cfg.Realm, SlotLimit: 2}, tc.Log, WithSnapshot(snap))
	require.ErrorIs(t, err, ErrSnapshotLimit)

	// an exactly sized space accepts it and the limit still binds afterwards
	exact, err := New(Config{Realm: a.Cfg.Realm, SlotLimit: 6}, tc.Log, WithSnapshot(snap))
	require.NoError(t, err)
	require.Equal(t, a.Count(), exact.Count())

	e, err := exact.Allocate()
	require.NoError(t, err)
	require.Equal(t, uint32(2), e.Index().Get())
	_, err = exact.Allocate()
	require.ErrorIs(t, err, ErrSlotsExhausted)
}

func TestSnapshotRejectsCorruptSections(t *testing.T) {
	type args struct {
		corrupt func(s *Snapshot)
	}
	tests := []struct {
		name string
		args args
		want error
	}{
		{"ragged generations", args{func(s *Snapshot) { s.Generations = s.Generations[:len(s.Generations)-1] }}, ErrSnapshotCorrupt},
		{"slot count mismatch", args{func(s *Snapshot) { s.SlotCount++ }}, ErrSnapshotCorrupt},
		{"free out of bounds", args{func(s *Snapshot) { s.Free = packSlotWords([]uint32{99}) }}, ErrSnapshotCorrupt},
		{"free duplicated", args{func(s *Snapshot) { s.Free = packSlotWords([]uint32{2, 2}) }}, ErrSnapshotCorrupt},
		{"free aliases live", args{func(s *Snapshot) { s.Free = packSlotWords([]uint32{0}) }}, ErrSnapshotCorrupt},
		{"free dropped", args{func(s *Snapshot) { s.Free = nil }}, ErrSnapshotCorrupt},
		{"garbage live section", args{func(s *Snapshot) { s.Live = []byte{0xde, 0xad} }}, ErrSnapshotCorrupt},
		{"retired unexhausted", args{func(s *Snapshot) { s.Retired, s.Free = s.Free, nil }}, ErrSnapshotCorrupt},
		// slot 0 in both live and retired keeps the population sum right
		// while orphaning the free slot, so only disjointness catches it
		{"retired aliases live", args{func(s *Snapshot) {
			binary.BigEndian.PutUint32(s.Generations, uint32(entity.GenerationMax))
			s.Retired = packSlotWords([]uint32{0})
			s.Free = nil
		}}, ErrSnapshotCorrupt},
		{"short realm", args{func(s *Snapshot) { s.Realm = s.Realm[:4] }}, ErrRealmMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAllocator(t, Config{})
			live, _ := testPopulation(t, a)
			before := a.Count()

			snap, err := a.Snapshot()
			require.NoError(t, err)
			tt.args.corrupt(snap)

			require.ErrorIs(t, a.RestoreSnapshot(snap), tt.want)

			// a refused restore must leave the allocator untouched
			require.Equal(t, before, a.Count())
			for _, e := range live {
				require.Truef(t, a.Alive(e), "entity %v", e)
			}
		})
	}
}
