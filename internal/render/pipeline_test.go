package render

import (
	"testing"

	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/config"
	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/lsp"
	"github.com/red-editor/red/internal/syntax"
	"github.com/red-editor/red/internal/term"
)

func newTestBuffer(t *testing.T, text string) *code.Code {
	t.Helper()
	c := code.New(nil)
	c.InsertText(text, 0, 0)
	return c
}

func TestPaintWritesGutterLineNumbers(t *testing.T) {
	c := newTestBuffer(t, "one\ntwo\nthree")
	scr := term.NewNullScreen(40, 10)
	p := New()
	vp := Viewport{Rows: 10, Cols: 40, GutterWidth: 5}

	p.Paint(scr, c, cursor.Selection{}, vp, config.DefaultTheme(), nil, Overlay{}, 0, 0)

	// Gutter layout: marker column, right-aligned number, one blank separator.
	cell := scr.GetCell(vp.GutterWidth-2, 0)
	if cell.Rune != '1' {
		t.Fatalf("gutter cell at row 0 = %q, want '1'", cell.Rune)
	}
	cell = scr.GetCell(vp.GutterWidth-2, 2)
	if cell.Rune != '3' {
		t.Fatalf("gutter cell at row 2 = %q, want '3'", cell.Rune)
	}
}

func TestPaintStopsAtLineCount(t *testing.T) {
	c := newTestBuffer(t, "only")
	scr := term.NewNullScreen(40, 10)
	p := New()
	vp := Viewport{Rows: 10, Cols: 40, GutterWidth: 5}

	p.Paint(scr, c, cursor.Selection{}, vp, config.DefaultTheme(), nil, Overlay{}, 0, 0)

	cell := scr.GetCell(vp.GutterWidth-1, 1)
	if cell.Rune != ' ' {
		t.Fatalf("gutter cell past the last line = %q, want blank", cell.Rune)
	}
}

func TestPaintAppliesSelectionBackground(t *testing.T) {
	c := newTestBuffer(t, "abcdef")
	scr := term.NewNullScreen(40, 10)
	p := New()
	vp := Viewport{Rows: 10, Cols: 40, GutterWidth: 5}
	sel := cursor.NewSelection(cursor.Point{Row: 0, Col: 1})
	sel = sel.ExtendTo(cursor.Point{Row: 0, Col: 3})
	sel.Active = true

	p.Paint(scr, c, sel, vp, config.DefaultTheme(), nil, Overlay{}, 0, 1)

	selectedCell := scr.GetCell(vp.GutterWidth+1, 0) // buffer column 1, 'b'
	wantBG, _ := term.ColorFromHex(config.DefaultTheme().Selection)
	if selectedCell.Style.Background != wantBG {
		t.Fatalf("selected cell background = %+v, want %+v", selectedCell.Style.Background, wantBG)
	}
	unselectedCell := scr.GetCell(vp.GutterWidth+4, 0) // buffer column 4, 'e'
	if unselectedCell.Style.Background == wantBG {
		t.Fatal("unselected cell picked up the selection background")
	}
}

func TestPaintPlacesDiagnosticAfterEndOfLine(t *testing.T) {
	c := newTestBuffer(t, "abc")
	scr := term.NewNullScreen(40, 10)
	p := New()
	vp := Viewport{Rows: 10, Cols: 40, GutterWidth: 5}
	diags := []lsp.Diagnostic{{
		Range:   lsp.Range{Start: lsp.Position{Line: 0, Character: 0}, End: lsp.Position{Line: 0, Character: 3}},
		Message: "boom",
	}}

	p.Paint(scr, c, cursor.Selection{}, vp, config.DefaultTheme(), diags, Overlay{}, 0, 0)

	col := vp.GutterWidth + 3 + 5 // end-of-text column + 5, per the diagnostic placement rule
	cell := scr.GetCell(col, 0)
	if cell.Rune != '/' {
		t.Fatalf("diagnostic marker at col %d = %q, want the leading '/' of \"// boom\"", col, cell.Rune)
	}
}

func TestPaintOverlayDrawsLinesAndHighlightsSelected(t *testing.T) {
	c := newTestBuffer(t, "x")
	scr := term.NewNullScreen(40, 10)
	p := New()
	vp := Viewport{Rows: 10, Cols: 40, GutterWidth: 5}
	overlay := Overlay{
		Kind:     OverlayCompletion,
		Lines:    []string{"foo", "bar"},
		Selected: 1,
		Anchor:   term.ScreenPos{Row: 0, Col: 0},
	}

	p.Paint(scr, c, cursor.Selection{}, vp, config.DefaultTheme(), nil, overlay, 0, 0)

	if got := scr.GetCell(0, 1).Rune; got != 'b' {
		t.Fatalf("overlay row 1 col 0 = %q, want 'b'", got)
	}
	wantBG, _ := term.ColorFromHex(config.DefaultTheme().Selection)
	if scr.GetCell(0, 1).Style.Background != wantBG {
		t.Fatal("selected overlay row missing the selection background")
	}
	if scr.GetCell(0, 0).Style.Background == wantBG {
		t.Fatal("non-selected overlay row picked up the selection background")
	}
}

func TestInvalidateHighlightsForcesRecompute(t *testing.T) {
	_ = newTestBuffer(t, "abc")
	p := New()
	calls := 0
	compute := func() []syntax.Span {
		calls++
		return nil
	}
	p.cache.get(0, 3, compute)
	p.cache.get(0, 3, compute)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (second get with identical bounds should hit the cache)", calls)
	}
	p.InvalidateHighlights()
	p.cache.get(0, 3, compute)
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (InvalidateHighlights must force a recompute)", calls)
	}
}
