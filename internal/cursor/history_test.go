package cursor

import "testing"

func TestHistoryBackForward(t *testing.T) {
	h := NewHistory(0)
	h.Push(Position{File: "a.go", Row: 0, Col: 0})
	h.Push(Position{File: "a.go", Row: 5, Col: 2})
	h.Push(Position{File: "b.go", Row: 1, Col: 0})

	if p, ok := h.Back(); !ok || p.File != "a.go" || p.Row != 5 {
		t.Fatalf("Back() = %v, %v", p, ok)
	}
	if p, ok := h.Back(); !ok || p.Row != 0 {
		t.Fatalf("Back() = %v, %v", p, ok)
	}
	if _, ok := h.Back(); ok {
		t.Fatal("Back() at the oldest entry should fail")
	}
	if p, ok := h.Forward(); !ok || p.Row != 5 {
		t.Fatalf("Forward() = %v, %v", p, ok)
	}
}

func TestHistoryPushTruncatesForwardBranch(t *testing.T) {
	h := NewHistory(0)
	h.Push(Position{Row: 0})
	h.Push(Position{Row: 1})
	h.Push(Position{Row: 2})
	h.Back()
	h.Back()
	h.Push(Position{Row: 99})
	if _, ok := h.Forward(); ok {
		t.Fatal("pushing after Back should discard the stale forward branch")
	}
	if got := h.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestHistoryDropsConsecutiveDuplicate(t *testing.T) {
	h := NewHistory(0)
	p := Position{File: "a.go", Row: 3, Col: 1}
	h.Push(p)
	h.Push(p)
	if got := h.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 (duplicate push should be a no-op)", got)
	}
}

func TestHistoryEvictsOldestBeyondCapacity(t *testing.T) {
	h := NewHistory(2)
	h.Push(Position{Row: 0})
	h.Push(Position{Row: 1})
	h.Push(Position{Row: 2})
	if got := h.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	cur, _ := h.Current()
	if cur.Row != 2 {
		t.Fatalf("Current() = %v, want row 2", cur)
	}
	if _, ok := h.Back(); !ok {
		t.Fatal("Back() should still reach the surviving older entry")
	}
}
