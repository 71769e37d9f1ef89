package editor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/lsp"
	"github.com/red-editor/red/internal/search"
	"github.com/red-editor/red/internal/term"
)

// HandleKey dispatches one key event against the active buffer. It returns
// (quit=true) when the controller loop should terminate (Ctrl+Q).
func (ctl *Controller) HandleKey(ctx context.Context, ev term.Event) (quit bool) {
	if ctl.Overlay != OverlayNone {
		ctl.handleOverlayKey(ctx, ev)
		return false
	}

	switch ev.Key {
	case term.KeyCtrlQ:
		return true
	case term.KeyCtrlS:
		ctl.Save()
	case term.KeyCtrlC:
		ctl.copySelection()
	case term.KeyCtrlX:
		ctl.cutSelection(ctx)
	case term.KeyCtrlV:
		ctl.paste(ctx)
	case term.KeyCtrlD:
		ctl.duplicateLine(ctx)
	case term.KeyCtrlZ:
		ctl.undo(ctx)
	case term.KeyCtrlY:
		ctl.redo(ctx)
	case term.KeyCtrlO:
		ctl.jumpBack()
	case term.KeyCtrlP:
		ctl.jumpForward()
	case term.KeyCtrlF:
		ctl.openLocalSearch()
	case term.KeyCtrlG:
		ctl.goToDefinitionAtCursor(ctx)
	case term.KeyCtrlR:
		ctl.findReferencesAtCursor(ctx)
	case term.KeyCtrlE:
		ctl.openErrorsOverlay(ctx)
	case term.KeyCtrlH:
		ctl.openHoverOverlay(ctx)
	case term.KeyCtrlSpace:
		ctl.openCompletion(ctx)
	case term.KeyCtrlT:
		ctl.PanelFocused = !ctl.PanelFocused
	case term.KeyUp, term.KeyDown, term.KeyLeft, term.KeyRight:
		ctl.handleArrow(ev)
	case term.KeyBackspace:
		ctl.handleBackspace(ctx, ev)
	case term.KeyDelete:
		ctl.handleDelete(ctx)
	case term.KeyEnter:
		ctl.insertText(ctx, "\n")
	case term.KeyTab:
		ctl.insertTab(ctx)
	case term.KeyRune:
		if ev.Mod.Has(term.ModAlt) && ev.Rune == '/' {
			ctl.toggleComment(ctx)
		} else {
			ctl.insertRune(ctx, ev.Rune)
		}
	}
	return false
}

func (ctl *Controller) handleArrow(ev term.Event) {
	if ctl.active == nil {
		return
	}
	row, col := ctl.CursorPosition()
	extend := ev.Mod.Has(term.ModShift)

	switch ev.Key {
	case term.KeyUp:
		if ev.Mod.Has(term.ModAlt) {
			ctl.growStructuralSelection(true)
			return
		}
		if ev.Mod.Has(term.ModCtrl) && ev.Mod.Has(term.ModShift) {
			ctl.moveLine(false)
			return
		}
		if row > 0 {
			row--
			col = clampCol(ctl.active.LineText(row), col)
		}
	case term.KeyDown:
		if ev.Mod.Has(term.ModAlt) {
			ctl.growStructuralSelection(false)
			return
		}
		if ev.Mod.Has(term.ModCtrl) && ev.Mod.Has(term.ModShift) {
			ctl.moveLine(true)
			return
		}
		if row < ctl.active.LineCount()-1 {
			row++
			col = clampCol(ctl.active.LineText(row), col)
		}
	case term.KeyLeft:
		if ev.Mod.Has(term.ModAlt) {
			start, _ := ctl.active.WordBoundaries(byteOffset(ctl.active, row, col))
			row, col = rowColAtByte(ctl.active, start)
		} else if col > 0 {
			col--
		} else if row > 0 {
			row--
			col = len([]rune(ctl.active.LineText(row)))
		}
	case term.KeyRight:
		if ev.Mod.Has(term.ModAlt) {
			_, end := ctl.active.WordBoundaries(byteOffset(ctl.active, row, col))
			row, col = rowColAtByte(ctl.active, end)
		} else if col < len([]rune(ctl.active.LineText(row))) {
			col++
		} else if row < ctl.active.LineCount()-1 {
			row++
			col = 0
		}
	}
	ctl.setCursor(row, col, extend)
}

func clampCol(line string, col int) int {
	n := len([]rune(line))
	if col > n {
		return n
	}
	return col
}

func (ctl *Controller) insertRune(ctx context.Context, r rune) {
	if ctl.active == nil {
		return
	}
	ctl.replaceSelectionOrInsert(ctx, string(r))
}

func (ctl *Controller) insertText(ctx context.Context, text string) {
	if ctl.active == nil {
		return
	}
	ctl.replaceSelectionOrInsert(ctx, text)
}

func (ctl *Controller) insertTab(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	row, col := ctl.CursorPosition()
	inserted := ctl.active.InsertTab(row, col)
	ctl.setCursor(row, col+len([]rune(inserted)), false)
	ctl.notifyChange(ctx)
}

// replaceSelectionOrInsert deletes the current selection (if non-empty)
// then inserts text at the cursor.
func (ctl *Controller) replaceSelectionOrInsert(ctx context.Context, text string) {
	if !ctl.Selection.IsEmpty() {
		from, to := ctl.Selection.Normalize()
		ctl.active.ReplaceText(from.Row, from.Col, to.Row, to.Col, text)
		row, col := endOfInsert(from, text)
		ctl.setCursor(row, col, false)
	} else {
		row, col := ctl.CursorPosition()
		ctl.active.InsertText(text, row, col)
		r2, c2 := endOfInsert(cursor.Point{Row: row, Col: col}, text)
		ctl.setCursor(r2, c2, false)
	}
	ctl.notifyChange(ctx)
}

func endOfInsert(from cursor.Point, text string) (row, col int) {
	row, col = from.Row, from.Col
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return row, col + len([]rune(lines[0]))
	}
	return row + len(lines) - 1, len([]rune(lines[len(lines)-1]))
}

func (ctl *Controller) handleBackspace(ctx context.Context, ev term.Event) {
	if ctl.active == nil {
		return
	}
	if !ctl.Selection.IsEmpty() {
		ctl.replaceSelectionOrInsert(ctx, "")
		return
	}
	row, col := ctl.CursorPosition()
	if ev.Mod.Has(term.ModAlt) {
		start, end := ctl.active.LineBoundaries(byteOffset(ctl.active, row, col))
		sr, sc := rowColAtByte(ctl.active, start)
		er, ec := rowColAtByte(ctl.active, end)
		ctl.active.RemoveText(sr, sc, er, ec)
		ctl.setCursor(sr, sc, false)
		ctl.notifyChange(ctx)
		return
	}
	if col == 0 {
		if row == 0 {
			return
		}
		prevLen := len([]rune(ctl.active.LineText(row - 1)))
		ctl.active.RemoveText(row-1, prevLen, row, 0)
		ctl.setCursor(row-1, prevLen, false)
	} else {
		ctl.active.RemoveChar(row, col)
		ctl.setCursor(row, col-1, false)
	}
	ctl.notifyChange(ctx)
}

func (ctl *Controller) handleDelete(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	if !ctl.Selection.IsEmpty() {
		ctl.replaceSelectionOrInsert(ctx, "")
		return
	}
	row, col := ctl.CursorPosition()
	lineLen := len([]rune(ctl.active.LineText(row)))
	if col == lineLen {
		if row == ctl.active.LineCount()-1 {
			return
		}
		ctl.active.RemoveText(row, col, row+1, 0)
	} else {
		ctl.active.RemoveText(row, col, row, col+1)
	}
	ctl.notifyChange(ctx)
}

func (ctl *Controller) undo(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	if mc := ctl.active.Undo(); mc != nil {
		row, col, _, _ := ctl.active.CursorPosition()
		ctl.setCursor(row, col, false)
	}
	ctl.notifyChange(ctx)
}

func (ctl *Controller) redo(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	if mc := ctl.active.Redo(); mc != nil {
		row, col, _, _ := ctl.active.CursorPosition()
		ctl.setCursor(row, col, false)
	}
	ctl.notifyChange(ctx)
}

func (ctl *Controller) copySelection() {
	if ctl.active == nil || ctl.Selection.IsEmpty() {
		return
	}
	from, to := ctl.Selection.Normalize()
	_ = ctl.clipboard.Write(textBetween(ctl.active, from, to))
}

func (ctl *Controller) cutSelection(ctx context.Context) {
	if ctl.active == nil || ctl.Selection.IsEmpty() {
		return
	}
	ctl.copySelection()
	ctl.replaceSelectionOrInsert(ctx, "")
}

func (ctl *Controller) paste(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	ctl.replaceSelectionOrInsert(ctx, ctl.clipboard.Read())
}

func textBetween(c *code.Code, from, to cursor.Point) string {
	if from.Row == to.Row {
		runes := []rune(c.LineText(from.Row))
		if to.Col > len(runes) {
			to.Col = len(runes)
		}
		return string(runes[from.Col:to.Col])
	}
	var b strings.Builder
	firstRunes := []rune(c.LineText(from.Row))
	b.WriteString(string(firstRunes[from.Col:]))
	b.WriteByte('\n')
	for r := from.Row + 1; r < to.Row; r++ {
		b.WriteString(c.LineText(r))
		b.WriteByte('\n')
	}
	lastRunes := []rune(c.LineText(to.Row))
	if to.Col > len(lastRunes) {
		to.Col = len(lastRunes)
	}
	b.WriteString(string(lastRunes[:to.Col]))
	return b.String()
}

// duplicateLine copies the selection, or the current line when there is
// none, directly below itself and moves the cursor onto the copy.
func (ctl *Controller) duplicateLine(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	if !ctl.Selection.IsEmpty() {
		from, to := ctl.Selection.Normalize()
		text := textBetween(ctl.active, from, to)
		ctl.active.InsertText(text, to.Row, to.Col)
		ctl.notifyChange(ctx)
		return
	}
	row, _ := ctl.CursorPosition()
	line := ctl.active.LineText(row)
	ctl.active.InsertText(line+"\n", row, 0)
	ctl.setCursor(row+1, 0, false)
	ctl.notifyChange(ctx)
}

// moveLine swaps the current line with the one below (down=true) or above
// it. Code.MoveLineDown groups its four constituent edits as one undo
// step, which is also what the controller reports to the LSP as a single
// full-document did_change.
func (ctl *Controller) moveLine(down bool) {
	if ctl.active == nil {
		return
	}
	row, _ := ctl.CursorPosition()
	moved := false
	if down && row < ctl.active.LineCount()-1 {
		moved = ctl.active.MoveLineDown(row)
	} else if !down && row > 0 {
		moved = ctl.active.MoveLineDown(row - 1)
	}
	if moved {
		ctl.notifyChange(context.Background())
	}
}

// toggleComment prefixes (or removes the prefix from) every line touched
// by the selection, or the current line when there is none, with the
// active language's comment token.
func (ctl *Controller) toggleComment(ctx context.Context) {
	if ctl.active == nil {
		return
	}
	lang := code.FindLanguage(ctl.active.Lang(), ctl.Languages)
	token := "//"
	if lang != nil && lang.Comment != "" {
		token = lang.Comment
	}

	startRow, endRow := ctl.selectionLineRange()
	allCommented := true
	for r := startRow; r <= endRow; r++ {
		if !strings.HasPrefix(strings.TrimLeft(ctl.active.LineText(r), " \t"), token) {
			allCommented = false
			break
		}
	}
	for r := startRow; r <= endRow; r++ {
		line := ctl.active.LineText(r)
		trimmed := strings.TrimLeft(line, " \t")
		indent := len([]rune(line)) - len([]rune(trimmed))
		if allCommented {
			if strings.HasPrefix(trimmed, token+" ") {
				ctl.active.RemoveText(r, indent, r, indent+len([]rune(token))+1)
			} else if strings.HasPrefix(trimmed, token) {
				ctl.active.RemoveText(r, indent, r, indent+len([]rune(token)))
			}
		} else {
			ctl.active.InsertText(token+" ", r, indent)
		}
	}
	ctl.notifyChange(ctx)
}

func (ctl *Controller) selectionLineRange() (start, end int) {
	if ctl.Selection.IsEmpty() {
		row, _ := ctl.CursorPosition()
		return row, row
	}
	from, to := ctl.Selection.Normalize()
	return from.Row, to.Row
}

func (ctl *Controller) jumpBack() {
	if ctl.active == nil {
		return
	}
	ctl.pushHistory()
	if pos, ok := ctl.History.Back(); ok {
		ctl.applyHistoryPosition(pos)
	}
}

func (ctl *Controller) jumpForward() {
	if pos, ok := ctl.History.Forward(); ok {
		ctl.applyHistoryPosition(pos)
	}
}

func (ctl *Controller) applyHistoryPosition(pos cursor.Position) {
	if pos.File != "" && (ctl.active == nil || ctl.active.AbsPath() != pos.File) {
		_ = ctl.OpenFile(context.Background(), pos.File)
	}
	ctl.ScrollY, ctl.ScrollX = pos.ScrollY, pos.ScrollX
	ctl.setCursor(pos.Row, pos.Col, false)
}

// growStructuralSelection walks the cursor's node path outward (Alt+Up)
// or back inward (Alt+Down), re-deriving the path whenever the cursor has
// moved off the anchor position it was built from.
func (ctl *Controller) growStructuralSelection(outward bool) {
	if ctl.active == nil {
		return
	}
	row, col := ctl.CursorPosition()
	if ctl.anchorNode == nil || ctl.anchorRow != row || ctl.anchorCol != col {
		ctl.anchorNode = ctl.active.GetNodePath(row, col)
		ctl.anchorRow, ctl.anchorCol = row, col
	}
	if ctl.anchorNode == nil {
		return
	}
	var ok bool
	var startByte, endByte int
	if outward {
		nr, got := ctl.anchorNode.NextNode()
		ok = got
		startByte, endByte = nr.StartByte, nr.EndByte
	} else {
		nr, got := ctl.anchorNode.PrevNode()
		ok = got
		startByte, endByte = nr.StartByte, nr.EndByte
	}
	if !ok {
		return
	}
	fromRow, fromCol := rowColAtByte(ctl.active, startByte)
	toRow, toCol := rowColAtByte(ctl.active, endByte)
	ctl.Selection = cursor.NewSelection(cursor.Point{Row: fromRow, Col: fromCol})
	ctl.Selection = ctl.Selection.ExtendTo(cursor.Point{Row: toRow, Col: toCol})
	ctl.Selection.Active = true
}

func (ctl *Controller) openLocalSearch() {
	if ctl.active == nil {
		return
	}
	ctl.Overlay = OverlaySearch
	ctl.OverlayLines = nil
}

func (ctl *Controller) handleOverlayKey(ctx context.Context, ev term.Event) {
	switch ctl.Overlay {
	case OverlaySearch:
		if ev.Key == term.KeyCtrlG {
			ctl.Overlay = OverlayNone
			matches, err := ctl.globalSearch(ctl.workspaceRoot(), ctl.searchQuery)
			if err == nil {
				lines := make([]string, 0, len(matches))
				for _, m := range matches {
					lines = append(lines, m.Path)
				}
				ctl.Overlay = OverlaySearch
				ctl.OverlayLines = lines
			}
			return
		}
		if ev.Key == term.KeyEscape {
			ctl.Overlay = OverlayNone
			ctl.searchQuery = ""
			return
		}
		if ev.Key == term.KeyBackspace && len(ctl.searchQuery) > 0 {
			ctl.searchQuery = ctl.searchQuery[:len(ctl.searchQuery)-1]
			return
		}
		if ev.Key == term.KeyRune {
			ctl.searchQuery += string(ev.Rune)
		}
	case OverlayCompletion, OverlayHover, OverlayReferences, OverlayErrors:
		if ev.Key == term.KeyEscape {
			ctl.Overlay = OverlayNone
			return
		}
		if ctl.Overlay == OverlayCompletion {
			switch ev.Key {
			case term.KeyUp:
				if ctl.OverlaySelected > 0 {
					ctl.OverlaySelected--
				}
			case term.KeyDown:
				if ctl.OverlaySelected < len(ctl.OverlayLines)-1 {
					ctl.OverlaySelected++
				}
			case term.KeyEnter:
				ctl.applyCompletion(ctx)
			}
		}
	}
}

func (ctl *Controller) workspaceRoot() string {
	if ctl.active == nil || ctl.active.AbsPath() == "" {
		return "."
	}
	return filepath.Dir(ctl.active.AbsPath())
}

func (ctl *Controller) openErrorsOverlay(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	diags := ctl.LSP.Diagnostics(ctl.active.AbsPath())
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, d.Message)
	}
	ctl.Overlay = OverlayErrors
	ctl.OverlayLines = lines
	ctl.OverlaySelected = 0
}

func (ctl *Controller) openHoverOverlay(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	row, col := ctl.CursorPosition()
	hover, err := ctl.LSP.Hover(ctx, ctl.active.AbsPath(), lsp.Position{Line: row, Character: col})
	if err != nil || hover == nil {
		return
	}
	ctl.Overlay = OverlayHover
	ctl.OverlayLines = strings.Split(hover.Contents.Value, "\n")
}

func (ctl *Controller) openCompletion(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	row, col := ctl.CursorPosition()
	prefix := currentWordPrefix(ctl.active, row, col)
	result, err := ctl.LSP.Complete(ctx, ctl.active.AbsPath(), lsp.Position{Line: row, Character: col}, prefix)
	if err != nil || result == nil || len(result.Items) == 0 {
		return
	}
	ranked := lsp.RankCompletions(result.Items, prefix)
	lines := make([]string, 0, len(ranked))
	for _, item := range ranked {
		lines = append(lines, item.Label)
	}
	ctl.Overlay = OverlayCompletion
	ctl.OverlayLines = lines
	ctl.OverlaySelected = 0
	ctl.completionItems = ranked
}

func (ctl *Controller) applyCompletion(ctx context.Context) {
	if ctl.OverlaySelected < 0 || ctl.OverlaySelected >= len(ctl.completionItems) {
		ctl.Overlay = OverlayNone
		return
	}
	item := ctl.completionItems[ctl.OverlaySelected]
	insertText := lsp.GetInsertText(item)
	row, col := ctl.CursorPosition()
	start, _ := ctl.active.WordBoundaries(byteOffset(ctl.active, row, col))
	sr, sc := rowColAtByte(ctl.active, start)
	ctl.active.ReplaceText(sr, sc, row, col, insertText)
	ctl.setCursor(sr, sc+len([]rune(insertText)), false)
	ctl.Overlay = OverlayNone
	ctl.notifyChange(ctx)
}

func currentWordPrefix(c *code.Code, row, col int) string {
	line := []rune(c.LineText(row))
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func (ctl *Controller) goToDefinitionAtCursor(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	row, col := ctl.CursorPosition()
	ctl.goToDefinitionAt(ctx, row, col)
}

// goToDefinitionAt is shared by the Ctrl+G key and a Ctrl+Left-Click mouse
// event, both of which navigate to a symbol's definition.
func (ctl *Controller) goToDefinitionAt(ctx context.Context, row, col int) {
	result, err := ctl.LSP.GoToDefinition(ctx, ctl.active.AbsPath(), lsp.Position{Line: row, Character: col})
	if err != nil || result == nil || len(result.Locations) == 0 {
		return
	}
	ctl.pushHistory()
	loc := result.Locations[0]
	path := lsp.URIToFilePath(loc.URI)
	if err := ctl.OpenFile(ctx, path); err != nil {
		return
	}
	ctl.setCursor(int(loc.Range.Start.Line), int(loc.Range.Start.Character), false)
}

func (ctl *Controller) findReferencesAtCursor(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	row, col := ctl.CursorPosition()
	ctl.findReferencesAt(ctx, row, col)
}

// findReferencesAt is shared by the Ctrl+R key and an Alt+Left-Click mouse
// event.
func (ctl *Controller) findReferencesAt(ctx context.Context, row, col int) {
	result, err := ctl.LSP.FindReferences(ctx, ctl.active.AbsPath(), lsp.Position{Line: row, Character: col})
	if err != nil || result == nil {
		return
	}
	lines := make([]string, 0, len(result.Locations))
	for _, loc := range result.Locations {
		lines = append(lines, lsp.URIToFilePath(loc.URI))
	}
	ctl.Overlay = OverlayReferences
	ctl.OverlayLines = lines
	ctl.OverlaySelected = 0
	ctl.referenceLocations = result.Locations
}

// globalSearch runs the workspace-wide text search triggered by Ctrl+G from
// inside the local-search overlay.
func (ctl *Controller) globalSearch(root, pattern string) ([]search.Match, error) {
	if pattern == "" {
		return nil, nil
	}
	return search.Global(root, pattern, 200)
}
