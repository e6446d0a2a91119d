package generator

const (
	// DefaultPrimaryKeyGlyph marks primary-key fields.
	DefaultPrimaryKeyGlyph = "🔑"
	// DefaultLinkGlyph marks fields named by a ref endpoint.
	DefaultLinkGlyph = "🔗"
)

// Option configures a Generator.
type Option func(*options)

type options struct {
	primaryKeyGlyph string
	linkGlyph       string
	source          *string
}

func defaultOptions() *options {
	return &options{
		primaryKeyGlyph: DefaultPrimaryKeyGlyph,
		linkGlyph:       DefaultLinkGlyph,
	}
}

// WithPrimaryKeyGlyph overrides the marker used for primary-key fields.
// An empty glyph keeps the default.
func WithPrimaryKeyGlyph(glyph string) Option {
	return func(o *options) {
		if glyph != "" {
			o.primaryKeyGlyph = glyph
		}
	}
}

// WithLinkGlyph overrides the marker used for fields that take part in a ref.
// An empty glyph keeps the default.
func WithLinkGlyph(glyph string) Option {
	return func(o *options) {
		if glyph != "" {
			o.linkGlyph = glyph
		}
	}
}

// WithSource appends a "Source" section holding the DBML text as a fenced
// code block after the schema sections.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = &source
	}
}
