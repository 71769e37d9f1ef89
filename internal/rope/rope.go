// Package rope implements a persistent, splittable UTF-8 text container.
//
// A Rope is a balanced tree of immutable string chunks. Insert and Remove
// return a new Rope value in O(log n); the receiver is left untouched, so a
// Rope can be captured cheaply for undo snapshots or concurrent readers.
// All public indices are byte offsets or line numbers; callers that need
// character (rune) positions convert through CharToByte/ByteToChar, since a
// document's public cursor addresses are (row, col) pairs in char units
// while the rope itself never needs to decode runes to do its job.
package rope

import (
	"strings"
	"unicode/utf8"
)

const maxLeaf = 1024 // bytes per leaf chunk before a split or merge cutoff

// Rope is an immutable text container built from a tree of string chunks.
type Rope struct {
	root node
}

// node is either a leaf (holding a string) or an internal node (holding
// two children). Both satisfy the same summary contract so the tree can
// be navigated uniformly.
type node interface {
	length() int
	lines() int
	summary() summary
}

type leaf struct {
	text string
	sum  summary
}

type branch struct {
	left, right node
	sum         summary
	leftLen     int // byte length of left subtree, cached for fast descent
	leftLines   int
}

// summary holds aggregate metrics for a subtree: total bytes and newlines.
type summary struct {
	bytes int
	lines int // number of '\n' bytes
}

func (l *leaf) length() int    { return len(l.text) }
func (l *leaf) lines() int     { return l.sum.lines }
func (l *leaf) summary() summary { return l.sum }

func (b *branch) length() int    { return b.sum.bytes }
func (b *branch) lines() int     { return b.sum.lines }
func (b *branch) summary() summary { return b.sum }

func newLeaf(s string) *leaf {
	return &leaf{text: s, sum: summary{bytes: len(s), lines: strings.Count(s, "\n")}}
}

func newBranch(l, r node) *branch {
	return &branch{
		left: l, right: r,
		leftLen:   l.length(),
		leftLines: l.lines(),
		sum: summary{
			bytes: l.length() + r.length(),
			lines: l.lines() + r.lines(),
		},
	}
}

// New returns an empty rope.
func New() *Rope { return &Rope{root: newLeaf("")} }

// FromString builds a rope from s, splitting it into balanced leaves.
func FromString(s string) *Rope {
	if len(s) == 0 {
		return New()
	}
	var chunks []string
	for len(s) > maxLeaf {
		cut := maxLeaf
		for cut < len(s) && !utf8.RuneStart(s[cut]) {
			cut++
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	chunks = append(chunks, s)
	return &Rope{root: buildBalanced(chunks)}
}

func buildBalanced(chunks []string) node {
	if len(chunks) == 1 {
		return newLeaf(chunks[0])
	}
	mid := len(chunks) / 2
	return newBranch(buildBalanced(chunks[:mid]), buildBalanced(chunks[mid:]))
}

// Len returns the byte length of the rope's text.
func (r *Rope) Len() int { return r.root.length() }

// LineCount returns the number of lines; an empty rope has one line.
func (r *Rope) LineCount() int { return r.root.lines() + 1 }

// String materializes the full text. Use sparingly for large ropes.
func (r *Rope) String() string {
	var b strings.Builder
	b.Grow(r.Len())
	appendTo(r.root, &b)
	return b.String()
}

func appendTo(n node, b *strings.Builder) {
	switch v := n.(type) {
	case *leaf:
		b.WriteString(v.text)
	case *branch:
		appendTo(v.left, b)
		appendTo(v.right, b)
	}
}

// Slice returns the text in the half-open byte range [start, end).
func (r *Rope) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return ""
	}
	var b strings.Builder
	b.Grow(end - start)
	sliceInto(r.root, start, end, &b)
	return b.String()
}

func sliceInto(n node, start, end int, b *strings.Builder) {
	if start >= end {
		return
	}
	switch v := n.(type) {
	case *leaf:
		if start < 0 {
			start = 0
		}
		if end > len(v.text) {
			end = len(v.text)
		}
		if start < end {
			b.WriteString(v.text[start:end])
		}
	case *branch:
		if start < v.leftLen {
			sliceInto(v.left, start, min(end, v.leftLen), b)
		}
		if end > v.leftLen {
			sliceInto(v.right, max(start-v.leftLen, 0), end-v.leftLen, b)
		}
	}
}

// Insert returns a new Rope with text inserted at the given byte offset.
func (r *Rope) Insert(offset int, text string) *Rope {
	if text == "" {
		return r
	}
	if offset <= 0 {
		return &Rope{root: concat(newLeaf(text), r.root)}
	}
	if offset >= r.Len() {
		return &Rope{root: concat(r.root, newLeaf(text))}
	}
	left, right := r.split(offset)
	return &Rope{root: concat(concat(left, newLeaf(text)), right)}
}

// Remove returns a new Rope with the half-open byte range [start, end) removed.
func (r *Rope) Remove(start, end int) *Rope {
	if start >= end {
		return r
	}
	if start <= 0 && end >= r.Len() {
		return New()
	}
	left, rest := r.split(start)
	restLen := r.Len() - start
	_, tail := splitNode(rest, min(end-start, restLen))
	return &Rope{root: concat(left, tail)}
}

// split splits the rope at a byte offset into two node trees.
func (r *Rope) split(offset int) (node, node) {
	return splitNode(r.root, offset)
}

func splitNode(n node, offset int) (node, node) {
	switch v := n.(type) {
	case *leaf:
		if offset <= 0 {
			return newLeaf(""), v
		}
		if offset >= len(v.text) {
			return v, newLeaf("")
		}
		return newLeaf(v.text[:offset]), newLeaf(v.text[offset:])
	case *branch:
		if offset <= v.leftLen {
			l, r := splitNode(v.left, offset)
			return l, concat(r, v.right)
		}
		l, r := splitNode(v.right, offset-v.leftLen)
		return concat(v.left, l), r
	}
	return newLeaf(""), newLeaf("")
}

func concat(a, b node) node {
	if a.length() == 0 {
		return b
	}
	if b.length() == 0 {
		return a
	}
	// Collapse small adjacent pieces into a single leaf so repeated
	// single-character edits don't grow an ever-deeper vine of branches;
	// larger subtrees are left as-is, which keeps the common edit path
	// (insert/remove near the same small region) close to balanced.
	if a.length()+b.length() <= maxLeaf {
		return newLeaf(flatten(a) + flatten(b))
	}
	return newBranch(a, b)
}

func flatten(n node) string {
	if l, ok := n.(*leaf); ok {
		return l.text
	}
	var b strings.Builder
	appendTo(n, &b)
	return b.String()
}

// ChunkAt returns the chunk containing byteOffset together with the byte
// offset at which that chunk begins; returns ("", Len()) past the end of the
// rope. The syntax layer does not call it: re-parsing is handed the whole
// document as one byte slice built from String().
func (r *Rope) ChunkAt(byteOffset int) (chunk string, chunkStart int) {
	if byteOffset >= r.Len() {
		return "", r.Len()
	}
	if byteOffset < 0 {
		byteOffset = 0
	}
	return chunkAt(r.root, byteOffset, 0)
}

func chunkAt(n node, offset, base int) (string, int) {
	switch v := n.(type) {
	case *leaf:
		return v.text, base
	case *branch:
		if offset < v.leftLen {
			return chunkAt(v.left, offset, base)
		}
		return chunkAt(v.right, offset-v.leftLen, base+v.leftLen)
	}
	return "", base
}

// Chunks returns every leaf chunk in order, used by full (non-incremental)
// parses and by Equals.
func (r *Rope) Chunks() []string {
	var out []string
	var walk func(node)
	walk = func(n node) {
		switch v := n.(type) {
		case *leaf:
			if v.text != "" {
				out = append(out, v.text)
			}
		case *branch:
			walk(v.left)
			walk(v.right)
		}
	}
	walk(r.root)
	return out
}

// LineStart returns the byte offset at which the given 0-indexed line begins.
func (r *Rope) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	off, ok := lineStart(r.root, line, 0)
	if !ok {
		return r.Len()
	}
	return off
}

func lineStart(n node, target, base int) (int, bool) {
	switch v := n.(type) {
	case *leaf:
		count := 0
		for i := 0; i < len(v.text); i++ {
			if v.text[i] == '\n' {
				count++
				if count == target {
					return base + i + 1, true
				}
			}
		}
		return 0, false
	case *branch:
		if v.leftLines >= target {
			if off, ok := lineStart(v.left, target, base); ok {
				return off, ok
			}
		}
		return lineStart(v.right, target-v.leftLines, base+v.leftLen)
	}
	return 0, false
}

// LineEnd returns the byte offset at which the given line ends, excluding
// its trailing newline (or the rope's length, for the last line).
func (r *Rope) LineEnd(line int) int {
	total := r.LineCount()
	if line >= total-1 {
		return r.Len()
	}
	next := r.LineStart(line + 1)
	if next > 0 {
		return next - 1
	}
	return 0
}

// LineText returns the content of a 0-indexed line, excluding the newline.
func (r *Rope) LineText(line int) string {
	return r.Slice(r.LineStart(line), r.LineEnd(line))
}

// LineCharLen returns the number of runes on a line, excluding the newline.
func (r *Rope) LineCharLen(line int) int {
	return utf8.RuneCountInString(r.LineText(line))
}

// CharToByte converts a (row, col) char position to a byte offset. col is
// clamped to the line's char length, matching spec's cursor-position
// invariant.
func (r *Rope) CharToByte(row, col int) int {
	lineStart := r.LineStart(row)
	line := r.LineText(row)
	if col <= 0 {
		return lineStart
	}
	i := 0
	for idx := range line {
		if i == col {
			return lineStart + idx
		}
		i++
	}
	return lineStart + len(line)
}

// ByteToChar converts a byte offset into a (row, col) char position.
func (r *Rope) ByteToChar(offset int) (row, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > r.Len() {
		offset = r.Len()
	}
	row = rowForByte(r, offset)
	lineStart := r.LineStart(row)
	col = utf8.RuneCountInString(r.Slice(lineStart, offset))
	return row, col
}

func rowForByte(r *Rope, offset int) int {
	lo, hi := 0, r.LineCount()-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.LineStart(mid) <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Equals reports whether two ropes contain the same text.
func (r *Rope) Equals(other *Rope) bool {
	return r.String() == other.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
