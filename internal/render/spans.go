package render

import (
	"regexp"
	"strings"

	"github.com/diogo/optchat/internal/models"
)

// imageURLPattern matches http(s) URLs ending in a known image extension.
// The trailing group consumes the whitespace (or end of text) that must
// follow the URL; only group 1 is the URL itself. Whitespace includes the
// Unicode separators (ideographic space, NBSP) and BOM, not just ASCII.
var imageURLPattern = regexp.MustCompile(`(?i)(https?://[^\s\p{Z}\x{FEFF}]+\.(?:png|jpe?g|gif|webp))(?:[\s\p{Z}\x{FEFF}]|$)`)

// Spans splits content into text and image spans. Matches are leftmost and
// non-overlapping; all text outside them is kept verbatim, so joining the
// span texts gives back content.
func Spans(content string) []models.Span {
	if content == "" {
		return nil
	}

	var spans []models.Span
	last := 0
	for _, loc := range imageURLPattern.FindAllStringSubmatchIndex(content, -1) {
		start, end := loc[2], loc[3]
		if start > last {
			spans = append(spans, models.Span{Kind: models.SpanText, Text: content[last:start]})
		}
		spans = append(spans, models.Span{Kind: models.SpanImage, Text: content[start:end]})
		last = end
	}
	if last < len(content) {
		spans = append(spans, models.Span{Kind: models.SpanText, Text: content[last:]})
	}
	return spans
}

// ImageURLs returns the image links found in content, in order
func ImageURLs(content string) []string {
	var urls []string
	for _, s := range Spans(content) {
		if s.IsImage() {
			urls = append(urls, s.Text)
		}
	}
	return urls
}

// JoinSpans concatenates span texts
func JoinSpans(spans []models.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
