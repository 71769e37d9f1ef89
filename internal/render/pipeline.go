// Package render is the repaint pipeline (SPEC_FULL.md component G): it
// turns an internal/code.Code plus the controller's selection, viewport and
// overlay state into term.Cell writes. Every frame is a full repaint, with
// no diff-cell tracking, which keeps this package a pure function
// of (code, cursor, overlay) rather than a mutable screen model like the
// teacher's renderer/dirty package tracked.
package render

import (
	"fmt"

	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/config"
	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/lsp"
	"github.com/red-editor/red/internal/syntax"
	"github.com/red-editor/red/internal/term"
)

// OverlayKind identifies which popup surface, if any, is showing over the
// buffer view.
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayCompletion
	OverlayHover
	OverlayReferences
	OverlayErrors
	OverlaySearch
)

// Overlay is the controller's current popup state. Lines is pre-formatted
// text, one entry per popup row; Selected highlights one row (completion's
// current candidate).
type Overlay struct {
	Kind     OverlayKind
	Lines    []string
	Selected int
	Anchor   term.ScreenPos // top-left corner to draw from
}

// Viewport is the scroll offset and visible size of the buffer pane.
type Viewport struct {
	Top, Left           int // first visible row/column, in buffer coordinates
	Rows, Cols          int // visible size, excluding the gutter
	GutterWidth         int
	LeftPanelWidth      int // 0 when the file-tree panel is hidden
}

// Pipeline owns the highlight cache across frames; everything else is
// passed in fresh each call to Paint.
type Pipeline struct {
	cache highlightCache
}

// New returns a Pipeline ready to paint frames.
func New() *Pipeline {
	return &Pipeline{}
}

// InvalidateHighlights forces the next Paint to recompute highlight spans,
// used after an edit changes the buffer under the cached range.
func (p *Pipeline) InvalidateHighlights() {
	p.cache.invalidate()
}

// Paint draws one frame: gutter, visible text with highlighting and
// selection, diagnostics, any active overlay, and the caret, then flips the
// screen buffer to the terminal.
func (p *Pipeline) Paint(scr term.Screen, c *code.Code, sel cursor.Selection, vp Viewport, theme config.Theme, diags []lsp.Diagnostic, overlay Overlay, cursorRow, cursorCol int) {
	scr.Clear()

	for screenRow := 0; screenRow < vp.Rows; screenRow++ {
		row := vp.Top + screenRow
		if row >= c.LineCount() {
			break
		}
		p.paintGutter(scr, c, screenRow, row, vp, theme)
		p.paintLine(scr, c, sel, screenRow, row, vp, theme)
		p.paintDiagnostics(scr, c, diags, screenRow, row, vp, theme)
	}

	if overlay.Kind != OverlayNone {
		p.paintOverlay(scr, overlay, theme)
	}

	caretCol := vp.GutterWidth + vp.LeftPanelWidth + VisualWidthOf(lineUpTo(c, cursorRow, cursorCol)) - vp.Left
	caretRow := cursorRow - vp.Top
	if caretRow >= 0 && caretRow < vp.Rows && caretCol >= vp.GutterWidth+vp.LeftPanelWidth {
		scr.ShowCursor(caretCol, caretRow)
	} else {
		scr.HideCursor()
	}

	scr.Show()
}

func lineUpTo(c *code.Code, row, col int) string {
	line := c.LineText(row)
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}
	return string(runes[:col])
}

func (p *Pipeline) paintGutter(scr term.Screen, c *code.Code, screenRow, row int, vp Viewport, theme config.Theme) {
	fg := hexOrDefault(theme.LineNumber)
	marker := ' '
	if c.IsRunnable(row) {
		marker = '▶' // ▶
	}
	label := fmt.Sprintf("%*d", vp.GutterWidth-2, row+1)
	x := vp.LeftPanelWidth
	scr.SetCell(x, screenRow, term.NewStyledCell(marker, term.NewStyle(fg)))
	x++
	for _, r := range label {
		scr.SetCell(x, screenRow, term.NewStyledCell(r, term.NewStyle(fg)))
		x++
	}
	scr.SetCell(x, screenRow, term.EmptyCell())
}

func (p *Pipeline) paintLine(scr term.Screen, c *code.Code, sel cursor.Selection, screenRow, row int, vp Viewport, theme config.Theme) {
	line := c.LineText(row)
	lineStartByte := lineByteStart(c, row)
	lineEndByte := lineStartByte + len(line)

	spans := p.cache.get(lineStartByte, lineEndByte, func() []syntax.Span {
		return c.HighlightInterval(lineStartByte, lineEndByte, nil)
	})

	screenCol := vp.GutterWidth + vp.LeftPanelWidth
	byteOff := lineStartByte
	colIdx := 0
	for _, r := range line {
		if screenCol-vp.GutterWidth-vp.LeftPanelWidth >= vp.Left+vp.Cols {
			break
		}
		w := VisualWidth(r)
		style := term.DefaultStyle()
		if color, ok := captureColorAt(spans, byteOff, theme); ok {
			style = style.WithForeground(color)
		}
		if sel.IsSelected(row, colIdx) {
			style = style.WithBackground(hexOrDefault(theme.Selection))
		}
		if screenCol-vp.GutterWidth-vp.LeftPanelWidth >= vp.Left {
			cell := term.NewStyledCell(r, style)
			if r == '\t' {
				cell = cell.WithRune(' ')
			}
			scr.SetCell(screenCol-vp.Left, screenRow, cell)
		}
		screenCol += w
		byteOff += len(string(r))
		colIdx++
	}
}

// captureColorAt returns the color of the last span covering byteOff that
// the theme's capture-name lookup (which itself falls back across
// dotted-path prefixes) resolves. Spans arrive larger first, so the last
// covering span is the most specific one.
func captureColorAt(spans []syntax.Span, byteOff int, theme config.Theme) (term.Color, bool) {
	color, found := term.Color{}, false
	for _, s := range spans {
		if byteOff >= s.StartByte && byteOff < s.EndByte {
			if hex, ok := theme.Color(s.Capture); ok {
				color, found = hexOrDefault(hex), true
			}
		}
	}
	return color, found
}

func lineByteStart(c *code.Code, row int) int {
	// Code.Text()/LineText give rune-indexed content; byte offsets for a
	// line are the cumulative byte length of all prior lines plus newlines.
	total := 0
	for r := 0; r < row; r++ {
		total += len(c.LineText(r)) + 1
	}
	return total
}

func (p *Pipeline) paintDiagnostics(scr term.Screen, c *code.Code, diags []lsp.Diagnostic, screenRow, row int, vp Viewport, theme config.Theme) {
	for _, d := range diags {
		if int(d.Range.Start.Line) != row {
			continue
		}
		endOfText := VisualWidthOf(c.LineText(row))
		col := vp.GutterWidth + vp.LeftPanelWidth + endOfText + 5 - vp.Left
		style := term.NewStyle(hexOrDefault(theme.Error))
		for _, r := range "// " + d.Message {
			if col >= vp.Cols+vp.GutterWidth+vp.LeftPanelWidth {
				break
			}
			scr.SetCell(col, screenRow, term.NewStyledCell(r, style))
			col++
		}
	}
}

func (p *Pipeline) paintOverlay(scr term.Screen, overlay Overlay, theme config.Theme) {
	for i, line := range overlay.Lines {
		row := overlay.Anchor.Row + i
		style := term.DefaultStyle()
		if i == overlay.Selected {
			style = style.WithBackground(hexOrDefault(theme.Selection))
		}
		col := overlay.Anchor.Col
		for _, r := range line {
			scr.SetCell(col, row, term.NewStyledCell(r, style))
			col++
		}
	}
}

func hexOrDefault(hex string) term.Color {
	if hex == "" {
		return term.ColorDefault
	}
	c, err := term.ColorFromHex(hex)
	if err != nil {
		return term.ColorDefault
	}
	return c
}
