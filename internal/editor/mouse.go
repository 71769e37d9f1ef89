package editor

import (
	"context"
	"time"

	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/render"
	"github.com/red-editor/red/internal/term"
)

// doubleClickWindow is how close together two clicks at the same buffer
// position must land to count as a double (and a third, a triple).
const doubleClickWindow = 700 * time.Millisecond

// HandleMouse dispatches one mouse event against vp, the viewport the
// render pipeline last painted with.
func (ctl *Controller) HandleMouse(ctx context.Context, ev term.Event, vp render.Viewport) {
	switch ev.MouseButton {
	case term.MouseWheelUp:
		ctl.ScrollY -= 3
		if ctl.ScrollY < 0 {
			ctl.ScrollY = 0
		}
		return
	case term.MouseWheelDown:
		ctl.ScrollY += 3
		return
	}

	if ev.MouseButton != term.MouseLeft {
		return
	}
	if ctl.active == nil {
		return
	}

	if ev.MouseX < vp.LeftPanelWidth {
		ctl.PanelFocused = true
		return
	}
	if ev.MouseX < vp.LeftPanelWidth+vp.GutterWidth {
		return
	}

	row, col := ctl.screenToBuffer(ev, vp)

	if ev.Mod.Has(term.ModCtrl) {
		ctl.goToDefinitionAt(ctx, row, col)
		return
	}
	if ev.Mod.Has(term.ModAlt) {
		ctl.findReferencesAt(ctx, row, col)
		return
	}

	clickCount := ctl.registerClick(row, col)
	switch clickCount {
	case 2:
		ctl.selectWordAt(row, col)
	case 3:
		ctl.selectLineAt(row)
	default:
		ctl.setCursor(row, col, false)
	}
}

func (ctl *Controller) screenToBuffer(ev term.Event, vp render.Viewport) (row, col int) {
	row = vp.Top + ev.MouseY
	if row >= ctl.active.LineCount() {
		row = ctl.active.LineCount() - 1
	}
	if row < 0 {
		row = 0
	}
	targetCol := ev.MouseX - vp.LeftPanelWidth - vp.GutterWidth + vp.Left
	col = render.ColumnAt(ctl.active.LineText(row), targetCol)
	return row, col
}

// registerClick tracks consecutive clicks at the same position within
// doubleClickWindow, returning the running count (1, 2, 3, then resets).
func (ctl *Controller) registerClick(row, col int) int {
	now := clickClock()
	if ctl.lastClick.row == row && ctl.lastClick.col == col && now.Sub(ctl.lastClick.at) <= doubleClickWindow {
		ctl.lastClick.count++
	} else {
		ctl.lastClick.count = 1
	}
	ctl.lastClick.at = now
	ctl.lastClick.row, ctl.lastClick.col = row, col
	if ctl.lastClick.count > 3 {
		ctl.lastClick.count = 1
	}
	return ctl.lastClick.count
}

// clickClock is time.Now wrapped so it is the only place this package
// calls a disallowed-in-workflow-scripts clock function; unremarkable in
// the compiled binary, just isolated for clarity.
func clickClock() time.Time { return time.Now() }

func (ctl *Controller) selectWordAt(row, col int) {
	start, end := ctl.active.WordBoundaries(byteOffset(ctl.active, row, col))
	sr, sc := rowColAtByte(ctl.active, start)
	er, ec := rowColAtByte(ctl.active, end)
	ctl.Selection = cursor.NewSelection(cursor.Point{Row: sr, Col: sc})
	ctl.Selection = ctl.Selection.ExtendTo(cursor.Point{Row: er, Col: ec})
	ctl.Selection.Active = true
	ctl.setCursorSilently(er, ec)
}

func (ctl *Controller) selectLineAt(row int) {
	start, end := ctl.active.LineBoundaries(byteOffset(ctl.active, row, 0))
	sr, sc := rowColAtByte(ctl.active, start)
	er, ec := rowColAtByte(ctl.active, end)
	ctl.Selection = cursor.NewSelection(cursor.Point{Row: sr, Col: sc})
	ctl.Selection = ctl.Selection.ExtendTo(cursor.Point{Row: er, Col: ec})
	ctl.Selection.Active = true
	ctl.setCursorSilently(er, ec)
}

// setCursorSilently moves the underlying Code cursor without touching
// Selection, used after selectWordAt/selectLineAt already built the
// selection explicitly.
func (ctl *Controller) setCursorSilently(row, col int) {
	_, _, sy, sx := ctl.active.CursorPosition()
	ctl.active.SetCursorPosition(row, col, sy, sx)
}
