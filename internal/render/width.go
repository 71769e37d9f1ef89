package render

import "golang.org/x/text/width"

// VisualWidth returns the number of terminal cells r occupies. Tabs are
// exactly one cell — SPEC_FULL.md is explicit that the tab/width policy is
// East-Asian width plus a flat one-cell tab stop, not per-language tab-stop
// arithmetic. East Asian wide and fullwidth runes are two cells; everything
// else, including combining marks and control characters, is one cell so a
// cursor column always has a corresponding screen column.
func VisualWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// VisualWidthOf returns the total screen width of s.
func VisualWidthOf(s string) int {
	total := 0
	for _, r := range s {
		total += VisualWidth(r)
	}
	return total
}

// ColumnAt returns the rune index in s whose visual column is closest to
// (without exceeding) targetCol, for mapping a mouse click's screen column
// back to a buffer column.
func ColumnAt(s string, targetCol int) int {
	col := 0
	idx := 0
	for _, r := range s {
		w := VisualWidth(r)
		if col+w > targetCol {
			return idx
		}
		col += w
		idx++
	}
	return idx
}
