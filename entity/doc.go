package entity

/*

# Entity identifiers (slot index + generation in one 64 bit word)

This package defines the identifier value type used by slot based object
stores: a handle that names a reusable storage slot together with the count of
times that slot has been recycled. Holding both halves in a single word means
a stale handle to a freed and reused slot is distinguishable from a live one
by plain comparison.

It keeps to the small-primitives style used across this repository:

- fixed width value types, copied never shared
- explicit shift/mask arithmetic, no reflection
- validated decoding of foreign bit patterns, errors never panics
- a burden of knowledge on the caller for hot paths

## Canonical layout

The public encoding packs the index into the upper half and the generation
into the lower half:

	 63            32 31             0
	+----------------+----------------+
	| index          | generation     |
	+----------------+----------------+

With this layout the unsigned order of the word is exactly the lexicographic
(index, generation) order: identifiers on different slots order by slot, and
recycles of the same slot order by recency.

The index value 0xFFFFFFFF is reserved. It never denotes a real slot and it
gives decoding a single well defined rejection: EntityFromBits refuses a word
if and only if its upper 32 bits are all ones. Every other 64 bit value, zero
included, decodes to a valid identifier.

The placeholder identifier sits just below the reserved value, on the highest
addressable index 0xFFFFFFFE. Allocators never issue that slot, so the
placeholder is a well formed identifier that cannot collide with a live one.

## Canonical bits versus stored bits

Internally an Index stores its canonical value offset by one, so a valid
Index never stores zero and a valid Entity never stores the all zero word.
That gives both types a usable zero value: a zero Index or zero Entity means
"not constructed", distinct from every identifier the constructors can
produce, including Placeholder.

The offset never leaks. ToBits and the marshal methods emit canonical bits,
FromBits and the unmarshal methods accept them, and ordering is defined over
canonical values. Callers that persist or transmit identifiers only ever see
the canonical form.

## Validity

NewIndex, IndexFromBits and EntityFromBits are the validating constructors.
The accessors and ToBits are total: fed a zero value they produce the
reserved pattern rather than panicking, so the invalidity survives any
encode and is caught by the next decode.

*/
