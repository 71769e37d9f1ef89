package cursor

import "sync"

// Position is one entry in the cursor history: a location the controller
// jumped to or from, enough to restore both the cursor and the scroll
// offset when navigating back to it.
type Position struct {
	File             string
	Row, Col         int
	ScrollY, ScrollX int
}

// History is a bounded, indexed cursor-position deque. Back/Forward walk
// entries in place via the current index, per spec's Ctrl+O/Ctrl+P; Push
// truncates any entries ahead of the current index (a fresh jump discards
// a stale redo branch, same as a text editor's undo stack), drops a push
// that exactly repeats the current entry, and evicts the oldest entry
// once maxItems is exceeded.
//
// Grounded on dshills-keystorm/internal/input/palette.History's
// bounded-with-trim shape, adapted from that package's MRU list (no
// index, dedup-by-move-to-front) to an indexed back/forward deque — the
// two histories serve different navigation models, but the capacity
// enforcement and mutex-guarded method layout carry over directly.
type History struct {
	mu       sync.Mutex
	items    []Position
	index    int // points at the "current" entry; Back/Forward move it
	maxItems int
}

// NewHistory creates a cursor history with the given capacity.
func NewHistory(maxItems int) *History {
	if maxItems <= 0 {
		maxItems = 200
	}
	return &History{maxItems: maxItems, index: -1}
}

// Push records a jump to p. Any entries ahead of the current index are
// discarded first. A push identical to the current entry is a no-op.
func (h *History) Push(p Position) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= 0 && h.index < len(h.items) && h.items[h.index] == p {
		return
	}
	if h.index+1 < len(h.items) {
		h.items = h.items[:h.index+1]
	}
	h.items = append(h.items, p)
	h.index = len(h.items) - 1

	if len(h.items) > h.maxItems {
		drop := len(h.items) - h.maxItems
		h.items = h.items[drop:]
		h.index -= drop
	}
}

// Back moves to the previous entry, returning it and true, or the zero
// Position and false if already at the oldest entry.
func (h *History) Back() (Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index <= 0 {
		return Position{}, false
	}
	h.index--
	return h.items[h.index], true
}

// Forward moves to the next entry, returning it and true, or the zero
// Position and false if already at the newest entry.
func (h *History) Forward() (Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 || h.index+1 >= len(h.items) {
		return Position{}, false
	}
	h.index++
	return h.items[h.index], true
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Current returns the entry at the current index, if any.
func (h *History) Current() (Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 || h.index >= len(h.items) {
		return Position{}, false
	}
	return h.items[h.index], true
}
