package code

import "testing"

func TestInsertUndoRedo(t *testing.T) {
	c := New(nil)
	c.InsertText("hello", 0, 0)
	if got := c.Text(); got != "hello" {
		t.Fatalf("Text() = %q, want %q", got, "hello")
	}

	c.InsertText(" world", 0, 5)
	if got := c.Text(); got != "hello world" {
		t.Fatalf("Text() = %q, want %q", got, "hello world")
	}

	if mc := c.Undo(); mc == nil || len(mc.Changes) != 1 {
		t.Fatalf("Undo() = %v, want one change", mc)
	}
	if got := c.Text(); got != "hello" {
		t.Fatalf("after undo Text() = %q, want %q", got, "hello")
	}

	if mc := c.Redo(); mc == nil || len(mc.Changes) != 1 {
		t.Fatalf("Redo() = %v, want one change", mc)
	}
	if got := c.Text(); got != "hello world" {
		t.Fatalf("after redo Text() = %q, want %q", got, "hello world")
	}

	if mc := c.Undo(); mc == nil {
		t.Fatal("second Undo() should not be nil")
	}
	if mc := c.Undo(); mc == nil {
		t.Fatal("third Undo() should not be nil")
	}
	if mc := c.Undo(); mc != nil {
		t.Fatalf("Undo() past the bottom of the stack = %v, want nil", mc)
	}
	if got := c.Text(); got != "" {
		t.Fatalf("fully undone Text() = %q, want empty", got)
	}
}

func TestRemoveTextUndo(t *testing.T) {
	c := New(nil)
	c.InsertText("hello world", 0, 0)
	c.RemoveText(0, 5, 0, 11)
	if got := c.Text(); got != "hello" {
		t.Fatalf("Text() after remove = %q, want %q", got, "hello")
	}
	c.Undo()
	if got := c.Text(); got != "hello world" {
		t.Fatalf("Text() after undo-remove = %q, want %q", got, "hello world")
	}
}

func TestReplaceTextIsOneUndoStep(t *testing.T) {
	c := New(nil)
	c.InsertText("hello world", 0, 0)
	c.ReplaceText(0, 6, 0, 11, "there")
	if got := c.Text(); got != "hello there" {
		t.Fatalf("Text() after replace = %q, want %q", got, "hello there")
	}
	if mc := c.Undo(); mc == nil || len(mc.Changes) != 2 {
		t.Fatalf("Undo() after replace = %v, want a 2-change group (remove+insert)", mc)
	}
	if got := c.Text(); got != "hello world" {
		t.Fatalf("Text() after undoing replace = %q, want %q", got, "hello world")
	}
	if mc := c.Redo(); mc == nil || len(mc.Changes) != 2 {
		t.Fatalf("Redo() after replace-undo = %v, want a 2-change group", mc)
	}
	if got := c.Text(); got != "hello there" {
		t.Fatalf("Text() after redoing replace = %q, want %q", got, "hello there")
	}
}

func TestMoveLineDown(t *testing.T) {
	c := New(nil)
	c.InsertText("hello\nworld\na", 0, 0)

	if !c.MoveLineDown(0) {
		t.Fatal("MoveLineDown(0) = false, want true")
	}
	if got := c.Text(); got != "world\nhello\na" {
		t.Fatalf("Text() = %q, want %q", got, "world\nhello\na")
	}

	c.Undo()
	if got := c.Text(); got != "hello\nworld\na" {
		t.Fatalf("Text() after undo = %q, want %q", got, "hello\nworld\na")
	}
}

func TestMoveLineDownLastLine(t *testing.T) {
	c := New(nil)
	c.InsertText("1\n2\n3\n4", 0, 0)

	if !c.MoveLineDown(2) {
		t.Fatal("MoveLineDown(2) = false, want true")
	}
	if got := c.Text(); got != "1\n2\n4\n3" {
		t.Fatalf("Text() = %q, want %q", got, "1\n2\n4\n3")
	}
}

func TestMoveLineDownRefusesShortBuffer(t *testing.T) {
	c := New(nil)
	c.InsertText("only\ntwo", 0, 0)
	if c.MoveLineDown(0) {
		t.Fatal("MoveLineDown should refuse a 2-line buffer")
	}
}

func TestIndentationLevelSpaces(t *testing.T) {
	c := New(nil)
	c.langConf = &Language{IndentUnit: " ", IndentWidth: 2}
	c.InsertText("    x := 1\n", 0, 0)
	if got := c.IndentationLevel(0); got != 2 {
		t.Fatalf("IndentationLevel() = %d, want 2", got)
	}
}

func TestIndentationLevelTabs(t *testing.T) {
	c := New(nil)
	c.langConf = &Language{IndentUnit: "\t"}
	c.InsertText("\t\tx := 1\n", 0, 0)
	if got := c.IndentationLevel(0); got != 2 {
		t.Fatalf("IndentationLevel() = %d, want 2", got)
	}
}

func TestIsOnlyIndentationBefore(t *testing.T) {
	c := New(nil)
	c.InsertText("    print('hi')\n", 0, 0)
	if !c.IsOnlyIndentationBefore(0, 4) {
		t.Fatal("IsOnlyIndentationBefore(0, 4) = false, want true")
	}
	if c.IsOnlyIndentationBefore(0, 0) {
		t.Fatal("IsOnlyIndentationBefore(0, 0) = true, want false")
	}
	if c.IsOnlyIndentationBefore(0, 10) {
		t.Fatal("IsOnlyIndentationBefore(0, 10) = true, want false (past indent into text)")
	}
}

func TestSearch(t *testing.T) {
	c := New(nil)
	c.InsertText("foo bar foo baz foo\n", 0, 0)
	matches := c.Search("foo")
	if len(matches) != 3 {
		t.Fatalf("Search() found %d matches, want 3", len(matches))
	}
	if matches[0] != [2]int{0, 0} || matches[1] != [2]int{0, 8} || matches[2] != [2]int{0, 16} {
		t.Fatalf("Search() matches = %v", matches)
	}
}

func TestWordBoundaries(t *testing.T) {
	c := New(nil)
	c.InsertText("foo bar_baz qux\n", 0, 0)
	start, end := c.WordBoundaries(5) // inside "bar_baz"
	if c.textSlice(start, end) != "bar_baz" {
		t.Fatalf("WordBoundaries(5) = %q", c.textSlice(start, end))
	}
}

func TestLineBoundaries(t *testing.T) {
	c := New(nil)
	c.InsertText("first\nsecond\nthird", 0, 0)
	start, end := c.LineBoundaries(8) // inside "second"
	if c.textSlice(start, end) != "second" {
		t.Fatalf("LineBoundaries(8) = %q", c.textSlice(start, end))
	}
}

func TestRemoveCharAtColumnZeroIsNoOp(t *testing.T) {
	c := New(nil)
	c.InsertText("a\nb", 0, 0)
	c.RemoveChar(1, 0)
	if got := c.Text(); got != "a\nb" {
		t.Fatalf("RemoveChar at column 0 mutated text: %q", got)
	}
}

// textSlice is a test-only helper reaching past the public API to confirm
// boundary results without duplicating rope slicing logic in the test.
func (c *Code) textSlice(start, end int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.Slice(start, end)
}
