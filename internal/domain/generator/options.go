package generator

// Option configures a generator.
type Option func(*base)

// WithSource sets the random source. A nil source is ignored.
func WithSource(src Source) Option {
	return func(b *base) {
		if src != nil {
			b.src = src
		}
	}
}

// WithIDFunc replaces the marker id builder.
func WithIDFunc(fn func(index int) string) Option {
	return func(b *base) {
		if fn != nil {
			b.id = fn
		}
	}
}
