package models

// SpanKind distinguishes plain text from a detected image link
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanImage
)

// String returns the kind name
func (k SpanKind) String() string {
	switch k {
	case SpanImage:
		return "image"
	default:
		return "text"
	}
}

// Span is a typed slice of message content
type Span struct {
	Kind SpanKind
	Text string // verbatim text, or the image URL
}

// IsImage reports whether the span is an image link
func (s Span) IsImage() bool {
	return s.Kind == SpanImage
}
