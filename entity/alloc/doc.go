package alloc

// This package implements the slot allocator that issues, recycles and
// retires the identifiers defined by the entity package. The entity types
// stay pure value math; the allocator owns the mutable slot table.
//
// The following properties hold for identifiers issued by one allocator:
//
//   - Every issued identifier carries a slot the allocator has extended to
//     and the recycle count that slot had at issue time.
//   - The reserved index and the placeholder index are never issued.
//   - The same (slot, generation) pair is never issued twice. Releasing a
//     slot bumps its generation; a slot whose counter is exhausted is
//     retired instead of recycled, shrinking the slot space rather than
//     repeating an identifier.
//   - Released slots are recycled most recent first.
//   - Stale handles are detectable: Alive compares the handle's generation
//     with the slot's current one.
//
// Allocator state can be captured as a Snapshot and restored, including
// across processes. Restoring refuses snapshots from a different realm so
// two identity spaces cannot be silently merged. Uniqueness across restores
// of *older* snapshots is the caller's responsibility, exactly as counter
// exhaustion over unbounded time is.
//
// All methods are safe for concurrent use. One mutex guards the slot table;
// identifiers themselves are plain values and never shared by reference.
