package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/config"
	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/render"
	"github.com/red-editor/red/internal/term"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	ctl := New(nil, nil, config.Theme{}, nil)
	ctl.active = code.New(nil)
	return ctl
}

func renderViewportForTest() render.Viewport {
	return render.Viewport{Rows: 20, Cols: 80, GutterWidth: 5}
}

func runeKey(r rune) term.Event {
	return term.Event{Type: term.EventKey, Key: term.KeyRune, Rune: r}
}

func TestHandleKeyInsertsRunes(t *testing.T) {
	ctl := newTestController(t)
	for _, r := range "hi" {
		ctl.HandleKey(context.Background(), runeKey(r))
	}
	if got := ctl.active.Text(); got != "hi" {
		t.Fatalf("Text() = %q, want %q", got, "hi")
	}
	row, col := ctl.CursorPosition()
	if row != 0 || col != 2 {
		t.Fatalf("cursor = (%d,%d), want (0,2)", row, col)
	}
}

func TestHandleKeyBackspaceJoinsLines(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("foo\nbar", 0, 0)
	ctl.setCursor(1, 0, false)
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyBackspace})
	if got := ctl.active.Text(); got != "foobar" {
		t.Fatalf("Text() = %q, want %q", got, "foobar")
	}
	row, col := ctl.CursorPosition()
	if row != 0 || col != 3 {
		t.Fatalf("cursor = (%d,%d), want (0,3)", row, col)
	}
}

func TestHandleKeyBackspaceAtStartOfBufferIsNoOp(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("abc", 0, 0)
	ctl.setCursor(0, 0, false)
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyBackspace})
	if got := ctl.active.Text(); got != "abc" {
		t.Fatalf("Text() = %q, want unchanged %q", got, "abc")
	}
}

func TestUndoRedoThroughController(t *testing.T) {
	ctl := newTestController(t)
	for _, r := range "ab" {
		ctl.HandleKey(context.Background(), runeKey(r))
	}
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyCtrlZ})
	if got := ctl.active.Text(); got != "a" {
		t.Fatalf("after undo Text() = %q, want %q", got, "a")
	}
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyCtrlY})
	if got := ctl.active.Text(); got != "ab" {
		t.Fatalf("after redo Text() = %q, want %q", got, "ab")
	}
}

func TestCopyCutPasteRoundTrip(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("hello world", 0, 0)
	ctl.Selection = cursor.NewSelection(cursor.Point{Row: 0, Col: 0})
	ctl.Selection = ctl.Selection.ExtendTo(cursor.Point{Row: 0, Col: 5})
	ctl.Selection.Active = true

	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyCtrlX})
	if got := ctl.active.Text(); got != " world" {
		t.Fatalf("after cut Text() = %q, want %q", got, " world")
	}

	ctl.setCursor(0, 0, false)
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyCtrlV})
	if got := ctl.active.Text(); got != "hello world" {
		t.Fatalf("after paste Text() = %q, want %q", got, "hello world")
	}
}

func TestArrowKeysClampAtLineBounds(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("ab\nc", 0, 0)
	ctl.setCursor(0, 0, false)

	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyUp})
	if row, col := ctl.CursorPosition(); row != 0 || col != 0 {
		t.Fatalf("Up at top row moved cursor to (%d,%d)", row, col)
	}

	ctl.setCursor(1, 1, false)
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyUp})
	if row, col := ctl.CursorPosition(); row != 0 || col != 1 {
		t.Fatalf("Up from (1,1) = (%d,%d), want (0,1) clamped to line length", row, col)
	}
}

func TestDuplicateLine(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("line", 0, 0)
	ctl.setCursor(0, 2, false)
	ctl.HandleKey(context.Background(), term.Event{Type: term.EventKey, Key: term.KeyCtrlD})
	if got := ctl.active.Text(); got != "line\nline" {
		t.Fatalf("Text() = %q, want %q", got, "line\nline")
	}
}

func TestToggleCommentAddsAndRemovesPrefix(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("x := 1", 0, 0)
	ctl.setCursor(0, 0, false)
	ctl.toggleComment(context.Background())
	if got := ctl.active.LineText(0); got != "// x := 1" {
		t.Fatalf("after toggle-on LineText = %q, want %q", got, "// x := 1")
	}
	ctl.toggleComment(context.Background())
	if got := ctl.active.LineText(0); got != "x := 1" {
		t.Fatalf("after toggle-off LineText = %q, want %q", got, "x := 1")
	}
}

func TestJumpBackAndForward(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("one\ntwo\nthree", 0, 0)
	ctl.setCursor(0, 0, false)
	ctl.pushHistory()
	ctl.setCursor(2, 0, false)
	ctl.pushHistory()

	ctl.jumpBack()
	if row, _ := ctl.CursorPosition(); row != 0 {
		t.Fatalf("jumpBack landed on row %d, want 0 (the entry pushed before the jump)", row)
	}

	ctl.jumpForward()
	if row, _ := ctl.CursorPosition(); row != 2 {
		t.Fatalf("jumpForward landed on row %d, want 2", row)
	}
}

func TestByteOffsetRoundTrip(t *testing.T) {
	c := code.New(nil)
	c.InsertText("héllo\nworld", 0, 0)

	cases := []struct{ row, col int }{
		{0, 0}, {0, 3}, {0, 5}, {1, 0}, {1, 5},
	}
	for _, tc := range cases {
		off := byteOffset(c, tc.row, tc.col)
		row, col := rowColAtByte(c, off)
		if row != tc.row || col != tc.col {
			t.Fatalf("byteOffset/rowColAtByte round trip for (%d,%d): got (%d,%d) via offset %d",
				tc.row, tc.col, row, col, off)
		}
	}
}

func TestOpenFileSwitchesActiveBuffer(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(pathA, []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte("bbb"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctl := New(nil, nil, config.Theme{}, nil)
	ctx := context.Background()
	if err := ctl.OpenFile(ctx, pathA); err != nil {
		t.Fatal(err)
	}
	if got := ctl.Active().Text(); got != "aaa" {
		t.Fatalf("Active().Text() = %q, want %q", got, "aaa")
	}

	if err := ctl.OpenFile(ctx, pathB); err != nil {
		t.Fatal(err)
	}
	if got := ctl.Active().Text(); got != "bbb" {
		t.Fatalf("Active().Text() = %q, want %q", got, "bbb")
	}

	// Re-opening A must restore the stashed buffer, not re-read the file.
	if err := ctl.OpenFile(ctx, pathA); err != nil {
		t.Fatal(err)
	}
	if got := ctl.Active().Text(); got != "aaa" {
		t.Fatalf("re-opened Active().Text() = %q, want %q", got, "aaa")
	}
}

func TestHandleMouseSetsCursor(t *testing.T) {
	ctl := newTestController(t)
	ctl.active.InsertText("abcdef\nghijkl", 0, 0)
	vp := renderViewportForTest()
	ev := term.Event{Type: term.EventMouse, MouseButton: term.MouseLeft, MouseX: vp.LeftPanelWidth + vp.GutterWidth + 2, MouseY: 1}
	ctl.HandleMouse(context.Background(), ev, vp)
	row, col := ctl.CursorPosition()
	if row != 1 || col != 2 {
		t.Fatalf("cursor after click = (%d,%d), want (1,2)", row, col)
	}
}
