// ABOUTME: Excerpt generation around search matches
// ABOUTME: Bounded windows with word-boundary trimming and balanced highlight markup
package search

import (
	"html"
	"strings"
	"unicode/utf8"
)

// highlightSpan is a highlighted run in clean-text rune offsets,
// half-open [start, end).
type highlightSpan struct {
	start, end int
}

// BuildExcerpt produces a short excerpt of text centered on the first
// search match, with matched terms wrapped in MarkOpen/MarkClose.
//
// text may be FTS highlight() output (markers already present) or plain
// text, in which case the first case-insensitive occurrence of term is
// highlighted manually. maxLen caps the excerpt in runes, not counting
// markers and ellipses. Everything except the markers themselves is
// HTML-escaped, so the result is safe to render as markup.
func BuildExcerpt(text, term string, maxLen int) string {
	if text == "" {
		return ""
	}

	clean, spans := parseHighlights(text)

	if len(spans) == 0 {
		pos, matchLen := findTerm(clean, term)
		if pos < 0 {
			// Nothing to highlight in this field: plain capped prefix.
			if len(clean) <= maxLen {
				return escapeRunes(clean)
			}
			return escapeRunes(clean[:maxLen]) + "..."
		}
		spans = []highlightSpan{{start: pos, end: pos + matchLen}}
	}

	// Whole text fits: no window, no ellipses.
	if len(clean) <= maxLen {
		return renderExcerpt(clean, spans, 0, len(clean))
	}

	first := spans[0]

	// Budget a third of the cap on each side of the first match. A match
	// longer than the cap still anchors the window at its start.
	start := first.start - maxLen/3
	if start < 0 {
		start = 0
	}
	end := first.end + maxLen/3
	if end > len(clean) {
		end = len(clean)
	}

	// Snap outward to word boundaries so no word is cut mid-token.
	if start > 0 {
		if sp := indexRune(clean, ' ', start, first.start); sp >= 0 {
			start = sp + 1
		}
	}
	if end < len(clean) {
		if sp := lastIndexRune(clean, ' ', first.end, end); sp >= 0 {
			end = sp
		}
	}

	// Never slice through a highlighted run: snap to whole spans so
	// every opening marker keeps its closing marker.
	for _, s := range spans {
		if start > s.start && start < s.end {
			start = s.start
		}
		if end > s.start && end < s.end {
			end = s.end
		}
	}

	excerpt := renderExcerpt(clean, spans, start, end)
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(clean) {
		excerpt = excerpt + "..."
	}
	return excerpt
}

// parseHighlights strips marker tags from s, returning the clean text
// as runes plus the highlighted spans in clean offsets. An unpaired
// opening marker extends to the end of the text.
func parseHighlights(s string) ([]rune, []highlightSpan) {
	clean := make([]rune, 0, len(s))
	var spans []highlightSpan
	var cur highlightSpan
	open := false

	for i := 0; i < len(s); {
		if !open && strings.HasPrefix(s[i:], MarkOpen) {
			open = true
			cur.start = len(clean)
			i += len(MarkOpen)
			continue
		}
		if open && strings.HasPrefix(s[i:], MarkClose) {
			open = false
			cur.end = len(clean)
			if cur.end > cur.start {
				spans = append(spans, cur)
			}
			i += len(MarkClose)
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		clean = append(clean, r)
		i += size
	}

	if open {
		cur.end = len(clean)
		if cur.end > cur.start {
			spans = append(spans, cur)
		}
	}

	return clean, spans
}

// findTerm locates the first case-insensitive occurrence of term in
// clean, returning its rune offset and rune length, or (-1, 0).
func findTerm(clean []rune, term string) (int, int) {
	if term == "" {
		return -1, 0
	}
	haystack := strings.ToLower(string(clean))
	needle := strings.ToLower(term)
	byteIdx := strings.Index(haystack, needle)
	if byteIdx < 0 {
		return -1, 0
	}
	pos := utf8.RuneCountInString(haystack[:byteIdx])
	return pos, utf8.RuneCountInString(needle)
}

// renderExcerpt emits clean[start:end] with every span inside the
// window wrapped in markers. Spans are rebuilt, never sliced, so the
// output markup always balances. Non-marker text is escaped.
func renderExcerpt(clean []rune, spans []highlightSpan, start, end int) string {
	var sb strings.Builder
	pos := start
	for _, s := range spans {
		if s.end <= start || s.start >= end {
			continue
		}
		sb.WriteString(escapeRunes(clean[pos:s.start]))
		sb.WriteString(MarkOpen)
		sb.WriteString(escapeRunes(clean[s.start:s.end]))
		sb.WriteString(MarkClose)
		pos = s.end
	}
	sb.WriteString(escapeRunes(clean[pos:end]))
	return sb.String()
}

func escapeRunes(rs []rune) string {
	return html.EscapeString(string(rs))
}

// indexRune finds the first occurrence of r in clean[from:to], returning
// its absolute offset or -1.
func indexRune(clean []rune, r rune, from, to int) int {
	for i := from; i < to && i < len(clean); i++ {
		if clean[i] == r {
			return i
		}
	}
	return -1
}

// lastIndexRune finds the last occurrence of r in clean[from:to].
func lastIndexRune(clean []rune, r rune, from, to int) int {
	for i := to - 1; i >= from && i >= 0; i-- {
		if i < len(clean) && clean[i] == r {
			return i
		}
	}
	return -1
}
