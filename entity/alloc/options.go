package alloc

type Options struct {
	// Snapshot, when set, is restored during New so the allocator starts
	// from captured state rather than empty.
	Snapshot *Snapshot

	// PreallocateSlots sizes the generation table backing array up front,
	// for callers that know their population and want to avoid growth
	// copies.
	PreallocateSlots uint32
}

// Option is a generic option type. Implementations type assert to the
// Options target record and if that fails the expectation is they ignore
// the option.
type Option func(any)

func WithSnapshot(s *Snapshot) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Snapshot = s
		}
	}
}

func WithPreallocateSlots(n uint32) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.PreallocateSlots = n
		}
	}
}
