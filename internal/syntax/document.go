// Package syntax owns an incrementally-parsed tree-sitter tree for a single
// document: applying point-free InputEdits, re-parsing from the owning
// rope's bytes, answering highlight-span queries (with language injection),
// runnable-test discovery, and node-path structural selection.
//
// Grounded on shinyvision-vimfony's internal/php.Document and
// internal/analyzer/twig.go: a single-owner *sitter.Tree behind a mutex,
// Edit-then-reparse, and query-cursor iteration over captures. Generalized
// here from PHP-specific static analysis to language-agnostic highlight
// spans, runnables, and node-path walks, and extended with lazy per-capture
// injection parsers (mitjafelicijan-qwe-editor's query-driven capture
// walk is the model for turning captures into colored spans).
package syntax

import (
	"context"
	"sort"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Grammar bundles everything a language needs to participate in the
// syntax layer: the tree-sitter language, its highlight query source, and
// an optional runnable/test-discovery query source.
type Grammar struct {
	Name           string
	Highlights     []byte
	Tests          []byte
	LanguageLoader func() sitter.Language
}

// InputEdit re-exports the tree-sitter edit descriptor so callers in
// internal/code don't need to import the sitter package directly.
type InputEdit = sitter.InputEdit

// Span is a byte-range highlight with the dotted capture name that
// produced it (e.g. "function.builtin"); the renderer looks the full name
// up in the theme, dropping trailing dot segments until one matches.
type Span struct {
	StartByte int
	EndByte   int
	Capture   string

	captureIndex uint32 // tiebreaks Highlights' sort for equal-length spans
}

// ChunkReader returns the document content as bytes. Nothing in this module
// constructs or consumes one: Reparse and Highlights take the full content
// as a byte slice.
type ChunkReader func() []byte

// Document owns the parser, tree and queries for one buffer. A Document
// with a nil grammar operates in plain mode: every method is then a legal
// no-op, per spec's "plain mode must be a legal state everywhere".
type Document struct {
	mu sync.Mutex

	grammar *Grammar
	lang    sitter.Language
	parser  *sitter.Parser
	tree    *sitter.Tree

	highlightQuery *sitter.Query
	testQuery      *sitter.Query

	injections map[string]*injection // by sub-language name, built lazily

	registry *Registry
}

// New constructs a Document for the given grammar (nil for plain mode).
func New(g *Grammar, registry *Registry) *Document {
	d := &Document{
		registry:   registry,
		injections: make(map[string]*injection),
	}
	if g == nil || g.LanguageLoader == nil {
		return d
	}
	d.grammar = g
	d.lang = g.LanguageLoader()
	p := sitter.NewParser()
	if err := p.SetLanguage(d.lang); err != nil {
		return d // degrade to plain mode
	}
	d.parser = p
	if len(g.Highlights) > 0 {
		if q, err := sitter.NewQuery(d.lang, g.Highlights); err == nil {
			d.highlightQuery = q
		}
	}
	if len(g.Tests) > 0 {
		if q, err := sitter.NewQuery(d.lang, g.Tests); err == nil {
			d.testQuery = q
		}
	}
	return d
}

// IsPlain reports whether this document has no working grammar.
func (d *Document) IsPlain() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parser == nil
}

// Reparse edits the existing tree (if any) with edit and re-parses against
// the full current content. edit is nil for the first parse of a buffer.
func (d *Document) Reparse(content []byte, edit *InputEdit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.parser == nil {
		return
	}
	if d.tree != nil && edit != nil {
		d.tree.Edit(*edit)
	}
	newTree, err := d.parser.ParseString(context.Background(), d.tree, content)
	if err != nil {
		return
	}
	if d.tree != nil {
		d.tree.Close()
	}
	d.tree = newTree
}

// Close releases the tree-sitter tree. Injection trees are closed inside
// Highlights right after use; the cached injection parsers are not released.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

// Highlights returns highlight spans covering [startByte, endByte), sorted
// so that larger spans come first and, for equal spans, higher capture
// index first — giving the renderer's last-writer-wins overwrite the most
// specific style on top, per spec.
func (d *Document) Highlights(content []byte, startByte, endByte int, allowed func(capture string) bool) []Span {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.parser == nil || d.tree == nil || d.highlightQuery == nil {
		return nil
	}
	spans := d.collectSpans(d.highlightQuery, d.tree.RootNode(), content, allowed)
	spans = d.expandInjections(spans, content, allowed)
	filtered := spans[:0]
	for _, s := range spans {
		if s.EndByte <= startByte || s.StartByte >= endByte {
			continue
		}
		filtered = append(filtered, s)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		li := filtered[i].EndByte - filtered[i].StartByte
		lj := filtered[j].EndByte - filtered[j].StartByte
		if li != lj {
			return li > lj
		}
		return filtered[i].captureIndex > filtered[j].captureIndex
	})
	return filtered
}

func (d *Document) collectSpans(q *sitter.Query, root sitter.Node, content []byte, allowed func(string) bool) []Span {
	var out []Span
	qc := sitter.NewQueryCursor()
	it := qc.Matches(q, root, content)
	for {
		m := it.Next()
		if m == nil {
			break
		}
		for _, cap := range m.Captures {
			name := q.CaptureNameForID(cap.Index)
			if allowed != nil && !allowed(name) {
				continue
			}
			out = append(out, Span{
				StartByte:    int(cap.Node.StartByte()),
				EndByte:      int(cap.Node.EndByte()),
				Capture:      name,
				captureIndex: cap.Index,
			})
		}
	}
	return out
}

// expandInjections walks spans captured as injection.content.<lang>,
// lazily builds a parser+query for that sub-language the first time it's
// seen, parses the sub-slice, and translates the inner spans back to
// outer byte offsets by adding the injection's start byte.
func (d *Document) expandInjections(spans []Span, content []byte, allowed func(string) bool) []Span {
	for _, s := range spans {
		if !strings.HasPrefix(s.Capture, "injection.content.") {
			continue
		}
		lang := strings.TrimPrefix(s.Capture, "injection.content.")
		sub := d.injectionFor(lang)
		if sub == nil {
			continue
		}
		innerContent := content[s.StartByte:s.EndByte]
		tree, err := sub.parser.ParseString(context.Background(), nil, innerContent)
		if err != nil {
			continue
		}
		innerSpans := d.collectSpans(sub.query, tree.RootNode(), innerContent, allowed)
		tree.Close()
		for _, is := range innerSpans {
			spans = append(spans, Span{
				StartByte:    is.StartByte + s.StartByte,
				EndByte:      is.EndByte + s.StartByte,
				Capture:      is.Capture,
				captureIndex: is.captureIndex,
			})
		}
	}
	return spans
}

// injection is the lazily-built parser+query pair for one sub-language
// encountered via an injection.content.<lang> capture. Cached per-Document
// so a document mixing HTML+JS doesn't rebuild the JS parser on every
// Highlights call; kept for the Document's lifetime.
type injection struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// injectionFor returns the cached injection parser for lang, building and
// caching it (including a nil cache entry for an unknown or broken
// language) on first use. Caller holds d.mu.
func (d *Document) injectionFor(lang string) *injection {
	if inj, ok := d.injections[lang]; ok {
		return inj
	}
	if d.registry == nil {
		d.injections[lang] = nil
		return nil
	}
	g, ok := d.registry.ByName(lang)
	if !ok || g.LanguageLoader == nil {
		d.injections[lang] = nil
		return nil
	}
	l := g.LanguageLoader()
	p := sitter.NewParser()
	if err := p.SetLanguage(l); err != nil {
		d.injections[lang] = nil
		return nil
	}
	var q *sitter.Query
	if len(g.Highlights) > 0 {
		q, _ = sitter.NewQuery(l, g.Highlights)
	}
	inj := &injection{parser: p, query: q}
	d.injections[lang] = inj
	return inj
}

// NodeRange is one entry of the chain NodePath returns.
type NodeRange struct {
	StartByte, EndByte int
	Type               string
}

// NodePath returns the chain of named nodes from the innermost node
// covering (startByte-inclusive point) up to the root, each entry
// strictly larger than the previous, for Alt+Up/Down structural
// selection. A parent spanning exactly the same bytes as the entry before
// it is skipped.
func (d *Document) NodePath(byteOffset int) []NodeRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return nil
	}
	root := d.tree.RootNode()
	node := root.NamedDescendantForByteRange(uint32(byteOffset), uint32(byteOffset))
	var path []NodeRange
	for cur := node; !cur.IsNull(); cur = cur.Parent() {
		start, end := int(cur.StartByte()), int(cur.EndByte())
		if n := len(path); n > 0 && path[n-1].StartByte == start && path[n-1].EndByte == end {
			continue
		}
		path = append(path, NodeRange{
			StartByte: start,
			EndByte:   end,
			Type:      cur.Type(),
		})
	}
	return path
}

// Runnable is a shell command bound to the row where a test was discovered.
type Runnable struct {
	Row int
	Cmd string
}

// Runnables runs the test-discovery query over the tree, binding {test}
// and {file} placeholders in template against each match's captured text
// and the absolute file path.
func (d *Document) Runnables(content []byte, template, absPath string) []Runnable {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.parser == nil || d.tree == nil || d.testQuery == nil || template == "" {
		return nil
	}
	var out []Runnable
	qc := sitter.NewQueryCursor()
	it := qc.Matches(d.testQuery, d.tree.RootNode(), content)
	for {
		m := it.Next()
		if m == nil {
			break
		}
		var name, recv string
		var row int
		for _, cap := range m.Captures {
			switch d.testQuery.CaptureNameForID(cap.Index) {
			case "test":
				name = cap.Node.Content(content)
				row = int(cap.Node.StartPoint().Row)
			case "_recv":
				recv = cap.Node.Content(content)
			}
		}
		if !looksLikeTestFunc(name, recv) {
			continue
		}
		cmd := strings.NewReplacer("{test}", name, "{file}", absPath).Replace(template)
		out = append(out, Runnable{Row: row, Cmd: cmd})
	}
	return out
}

// looksLikeTestFunc replicates go test's discovery rule (name prefix plus
// a *testing.T/B/F receiver parameter) without relying on query predicates,
// which this binding's QueryCursor does not evaluate itself. Zero-argument
// Example funcs never reach here since the query requires a parameter.
func looksLikeTestFunc(name, recvType string) bool {
	if name == "" || recvType == "" {
		return false
	}
	switch {
	case strings.HasPrefix(name, "Test"):
		return recvType == "testing.T" || recvType == "T"
	case strings.HasPrefix(name, "Benchmark"):
		return recvType == "testing.B" || recvType == "B"
	case strings.HasPrefix(name, "Fuzz"):
		return recvType == "testing.F" || recvType == "F"
	}
	return false
}
