package editor

import (
	"context"

	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/cursor"
)

// OpenFile loads path as the active buffer, stashing whatever was active
// before it. Re-opening an already-stashed path restores it instead of
// reading the file twice, matching the teacher's document-cache idea in
// spirit (one Code per path, never two live copies of the same file).
func (ctl *Controller) OpenFile(ctx context.Context, path string) error {
	if ctl.active != nil {
		ctl.codes[ctl.active.AbsPath()] = ctl.active
	}

	c, ok := ctl.codes[path]
	if !ok {
		opened, err := code.Open(path, ctl.Languages, ctl.Registry)
		if err != nil {
			return err
		}
		c = opened
		delete(ctl.codes, path)
	} else {
		delete(ctl.codes, c.AbsPath())
	}

	ctl.active = c
	ctl.ScrollX, ctl.ScrollY = 0, 0
	row, col, _, _ := c.CursorPosition()
	ctl.Selection = cursor.NewSelection(cursor.Point{Row: row, Col: col})

	if ctl.LSP != nil && c.AbsPath() != "" {
		_ = ctl.LSP.OpenDocument(ctx, c.AbsPath(), c.Text())
	}
	return nil
}

// byteOffset converts a (row, col) char position in the active buffer to
// a byte offset, the unit WordBoundaries and LineBoundaries work in. Code
// deliberately doesn't expose its rope, so this walks line lengths the
// same way render.lineByteStart does.
func byteOffset(c *code.Code, row, col int) int {
	total := 0
	for r := 0; r < row; r++ {
		total += len(c.LineText(r)) + 1
	}
	line := []rune(c.LineText(row))
	if col > len(line) {
		col = len(line)
	}
	total += len(string(line[:col]))
	return total
}

// rowColAtByte is byteOffset's inverse.
func rowColAtByte(c *code.Code, byteOff int) (row, col int) {
	total := 0
	for r := 0; r < c.LineCount(); r++ {
		line := c.LineText(r)
		lineBytes := len(line)
		if byteOff <= total+lineBytes {
			rel := byteOff - total
			runes := []rune(line)
			count := 0
			consumed := 0
			for _, rn := range runes {
				sz := len(string(rn))
				if consumed+sz > rel {
					break
				}
				consumed += sz
				count++
			}
			return r, count
		}
		total += lineBytes + 1
	}
	return c.LineCount() - 1, 0
}
