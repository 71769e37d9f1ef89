package render

import "testing"

func TestVisualWidthASCIIAndTab(t *testing.T) {
	if w := VisualWidth('a'); w != 1 {
		t.Fatalf("VisualWidth('a') = %d, want 1", w)
	}
	if w := VisualWidth('\t'); w != 1 {
		t.Fatalf("VisualWidth('\\t') = %d, want 1 (flat tab stop, not column-arithmetic)", w)
	}
}

func TestVisualWidthEastAsianWide(t *testing.T) {
	if w := VisualWidth('漢'); w != 2 {
		t.Fatalf("VisualWidth('漢') = %d, want 2", w)
	}
}

func TestVisualWidthOfSumsRunes(t *testing.T) {
	if w := VisualWidthOf("a漢b"); w != 4 {
		t.Fatalf("VisualWidthOf(\"a漢b\") = %d, want 4", w)
	}
}

func TestColumnAtASCII(t *testing.T) {
	if c := ColumnAt("hello", 3); c != 3 {
		t.Fatalf("ColumnAt(\"hello\", 3) = %d, want 3", c)
	}
}

func TestColumnAtWideRuneCountsAsTwoColumns(t *testing.T) {
	// "漢a": 漢 occupies columns 0-1, 'a' occupies column 2.
	if c := ColumnAt("漢a", 2); c != 1 {
		t.Fatalf("ColumnAt(\"漢a\", 2) = %d, want 1 (landing on 'a')", c)
	}
	if c := ColumnAt("漢a", 1); c != 0 {
		t.Fatalf("ColumnAt(\"漢a\", 1) = %d, want 0 (still inside the wide rune)", c)
	}
}

func TestColumnAtPastEndOfLineReturnsRuneCount(t *testing.T) {
	if c := ColumnAt("hi", 50); c != 2 {
		t.Fatalf("ColumnAt(\"hi\", 50) = %d, want 2 (rune count)", c)
	}
}
