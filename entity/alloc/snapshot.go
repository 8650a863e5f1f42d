package alloc

// Snapshot layout and codec. The envelope is deterministic CBOR with
// keyasint tags so encodings are byte stable; the variable length sections
// inside it are packed big endian slot words, except the live set which
// travels in its roaring serialized form. Everything a decoder cannot
// trust is checked before any state is replaced.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	commoncbor "github.com/datatrails/go-datatrails-common/cbor"

	"github.com/herabit/pillar/entity"
)

const (
	SnapshotVersion uint16 = 1

	// SlotWordBytes is the packed width of one slot entry in the
	// Generations, Free and Retired sections.
	SlotWordBytes = 4

	// RealmBytes is the raw width of the realm id.
	RealmBytes = 16
)

var (
	ErrSnapshotVersion = errors.New("alloc: unsupported snapshot version")
	ErrSnapshotCorrupt = errors.New("alloc: snapshot sections are inconsistent")
	ErrSnapshotLimit   = errors.New("alloc: snapshot extends past the configured slot limit")
	ErrRealmMismatch   = errors.New("alloc: snapshot realm does not match the allocator realm")
)

// Snapshot is the portable form of an allocator's state. Every extended slot
// appears in exactly one of the live, free or retired sections.
type Snapshot struct {
	Version uint16 `cbor:"1,keyasint"`
	Realm   []byte `cbor:"2,keyasint"`

	// SlotCount is how far the slot table had extended when the snapshot was
	// taken.
	SlotCount uint32 `cbor:"3,keyasint"`

	// Generations holds one big endian word per extended slot: the counter
	// the slot carries while live, or will carry on its next issue.
	Generations []byte `cbor:"4,keyasint"`

	// Free holds the released slots in release order, most recently released
	// last. Restore preserves this order so recycling resumes where the
	// snapshotted allocator left off.
	Free []byte `cbor:"5,keyasint"`

	// Live is the roaring serialization of the slots with a live identifier.
	Live []byte `cbor:"6,keyasint"`

	// Retired holds the slots withdrawn after counter exhaustion.
	Retired []byte `cbor:"7,keyasint"`
}

// Snapshot captures the allocator's current state.
func (a *Allocator) Snapshot() (*Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	liveBytes, err := a.live.ToBytes()
	if err != nil {
		return nil, err
	}

	realm := make([]byte, RealmBytes)
	copy(realm, a.Cfg.Realm[:])

	return &Snapshot{
		Version:     SnapshotVersion,
		Realm:       realm,
		SlotCount:   uint32(len(a.generations)),
		Generations: packSlotWords(a.generations),
		Free:        packSlotWords(a.free),
		Live:        liveBytes,
		Retired:     packSlotWords(a.retired.ToArray()),
	}, nil
}

// RestoreSnapshot replaces the allocator's state with the snapshot's. The
// snapshot must come from this allocator's realm, must fit within its
// configured slot limit and must be internally consistent; nothing is
// replaced until every section has been checked. Restoring a snapshot older
// than identifiers still in circulation reopens the door to duplicate
// issues. Guarding against that is left to the caller.
func (a *Allocator) RestoreSnapshot(s *Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.Version != SnapshotVersion {
		return fmt.Errorf("version %d: %w", s.Version, ErrSnapshotVersion)
	}
	if !bytes.Equal(s.Realm, a.Cfg.Realm[:]) {
		return fmt.Errorf("%x: %w", s.Realm, ErrRealmMismatch)
	}

	generations, err := unpackSlotWords(s.Generations)
	if err != nil {
		return err
	}
	if uint64(len(generations)) != uint64(s.SlotCount) {
		return fmt.Errorf("%d generation words for %d slots: %w", len(generations), s.SlotCount, ErrSnapshotCorrupt)
	}
	if s.SlotCount > MaxSlotCount {
		return fmt.Errorf("%d slots: %w", s.SlotCount, ErrSnapshotCorrupt)
	}
	if s.SlotCount > a.Cfg.maxSlots() {
		return fmt.Errorf("%d slots with limit %d: %w", s.SlotCount, a.Cfg.maxSlots(), ErrSnapshotLimit)
	}

	free, err := unpackSlotWords(s.Free)
	if err != nil {
		return err
	}

	live := roaring.New()
	if err = live.UnmarshalBinary(s.Live); err != nil {
		return fmt.Errorf("live section %v: %w", err, ErrSnapshotCorrupt)
	}

	retiredSlots, err := unpackSlotWords(s.Retired)
	if err != nil {
		return err
	}
	retired := roaring.New()
	retired.AddMany(retiredSlots)
	if uint64(len(retiredSlots)) != retired.GetCardinality() {
		return fmt.Errorf("duplicate retired slots: %w", ErrSnapshotCorrupt)
	}

	if !live.IsEmpty() && live.Maximum() >= s.SlotCount {
		return fmt.Errorf("live slot %d of %d: %w", live.Maximum(), s.SlotCount, ErrSnapshotCorrupt)
	}
	if !retired.IsEmpty() && retired.Maximum() >= s.SlotCount {
		return fmt.Errorf("retired slot %d of %d: %w", retired.Maximum(), s.SlotCount, ErrSnapshotCorrupt)
	}
	if live.Intersects(retired) {
		return fmt.Errorf("live and retired sections overlap: %w", ErrSnapshotCorrupt)
	}

	freeSeen := roaring.New()
	for _, slot := range free {
		if slot >= s.SlotCount || freeSeen.Contains(slot) || live.Contains(slot) || retired.Contains(slot) {
			return fmt.Errorf("free slot %d: %w", slot, ErrSnapshotCorrupt)
		}
		freeSeen.Add(slot)
	}

	// every extended slot is live, free or retired, and only one of those
	if live.GetCardinality()+uint64(len(free))+retired.GetCardinality() != uint64(s.SlotCount) {
		return fmt.Errorf("%d live, %d free, %d retired of %d slots: %w",
			live.GetCardinality(), len(free), retired.GetCardinality(), s.SlotCount, ErrSnapshotCorrupt)
	}

	exhausted := true
	retired.Iterate(func(slot uint32) bool {
		exhausted = generations[slot] == uint32(entity.GenerationMax)
		return exhausted
	})
	if !exhausted {
		return fmt.Errorf("retired slot with unexhausted counter: %w", ErrSnapshotCorrupt)
	}

	a.generations = generations
	a.free = free
	a.live = live
	a.retired = retired
	a.Log.Debugf("restored %d slots, %d live", s.SlotCount, live.GetCardinality())
	return nil
}

// NewSnapshotCodec returns the deterministic CBOR codec used for snapshot
// envelopes.
func NewSnapshotCodec() (commoncbor.CBORCodec, error) {
	codec, err := commoncbor.NewCBORCodec(
		commoncbor.NewDeterministicEncOpts(),
		commoncbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return commoncbor.CBORCodec{}, err
	}
	return codec, nil
}

// EncodeSnapshot serializes the snapshot envelope.
func EncodeSnapshot(codec commoncbor.CBORCodec, s *Snapshot) ([]byte, error) {
	return codec.MarshalCBOR(s)
}

// DecodeSnapshot deserializes a snapshot envelope and checks its shape. The
// deeper cross section consistency is checked by RestoreSnapshot, which is
// the only consumer of the decoded state.
func DecodeSnapshot(codec commoncbor.CBORCodec, data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := codec.UnmarshalInto(data, s); err != nil {
		return nil, err
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("version %d: %w", s.Version, ErrSnapshotVersion)
	}
	if len(s.Realm) != RealmBytes {
		return nil, fmt.Errorf("%d realm bytes: %w", len(s.Realm), ErrSnapshotCorrupt)
	}
	return s, nil
}

func packSlotWords(slots []uint32) []byte {
	b := make([]byte, len(slots)*SlotWordBytes)
	for i, slot := range slots {
		binary.BigEndian.PutUint32(b[i*SlotWordBytes:], slot)
	}
	return b
}

func unpackSlotWords(b []byte) ([]uint32, error) {
	if len(b)%SlotWordBytes != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", len(b)%SlotWordBytes, ErrSnapshotCorrupt)
	}
	slots := make([]uint32, len(b)/SlotWordBytes)
	for i := range slots {
		slots[i] = binary.BigEndian.Uint32(b[i*SlotWordBytes:])
	}
	return slots, nil
}
