package render

import "github.com/red-editor/red/internal/syntax"

// highlightCache memoizes Code.HighlightInterval for one exact (start, end)
// byte range. It holds a single entry keyed on the exact bounds (not a
// containment check), so it stays correct the moment either bound moves.
// Paint requests one line's range at a time, so the entry is reused only
// when the same range is requested twice in a row; with several visible
// rows each request recomputes the spans.
type highlightCache struct {
	start, end int
	valid      bool
	spans      []syntax.Span
}

func (c *highlightCache) get(start, end int, compute func() []syntax.Span) []syntax.Span {
	if c.valid && c.start == start && c.end == end {
		return c.spans
	}
	c.spans = compute()
	c.start, c.end = start, end
	c.valid = true
	return c.spans
}

func (c *highlightCache) invalidate() {
	c.valid = false
}
