// Package editor is the controller (SPEC_FULL.md component F): the state
// machine that owns the active buffer, cursor, selection, viewport and
// overlay, and turns term.Events into internal/code and internal/lsp calls.
// It is the one piece of this program every other component answers to —
// replacing the teacher's internal/app + internal/dispatcher +
// internal/engine cluster, which modeled the same responsibility (active
// document, key routing, LSP sync) for a much larger modal-editing,
// multi-cursor feature set this editor does not have.
package editor

import (
	"context"
	"time"

	"github.com/red-editor/red/internal/clipboard"
	"github.com/red-editor/red/internal/code"
	"github.com/red-editor/red/internal/config"
	"github.com/red-editor/red/internal/cursor"
	"github.com/red-editor/red/internal/lsp"
	"github.com/red-editor/red/internal/render"
	"github.com/red-editor/red/internal/syntax"
)

// Overlay is an alias of render.OverlayKind; the constants below re-export
// its values under this package's names.
type Overlay = render.OverlayKind

const (
	OverlayNone       = render.OverlayNone
	OverlayCompletion = render.OverlayCompletion
	OverlayHover      = render.OverlayHover
	OverlayReferences = render.OverlayReferences
	OverlayErrors     = render.OverlayErrors
	OverlaySearch     = render.OverlaySearch
)

// clickRecord remembers the last mouse-down, to detect double/triple clicks
// within the 700ms window SPEC_FULL.md's mouse section names.
type clickRecord struct {
	at       time.Time
	row, col int
	count    int
}

// Controller is the editor's single state machine. It is not safe for
// concurrent use — every entry point (HandleKey, HandleMouse, the LSP
// diagnostics callback) must run on the same goroutine, matching
// SPEC_FULL.md's single-threaded cooperative scheduling model.
type Controller struct {
	Registry  *syntax.Registry
	Languages []code.Language
	Theme     config.Theme
	LSP       *lsp.Client

	active *code.Code
	codes  map[string]*code.Code // inactive buffers, keyed by absolute path

	Selection cursor.Selection
	History   *cursor.History
	ScrollY   int
	ScrollX   int

	LeftPanelWidth int
	PanelFocused   bool

	Overlay         Overlay
	OverlayLines    []string
	OverlaySelected int

	HoveredRunnableLine int
	clipboard           *clipboard.Clipboard
	lastClick           clickRecord

	anchorNode *code.NodePath // Alt+Up/Down structural-selection walk
	anchorRow  int
	anchorCol  int

	searchQuery        string
	completionItems    []lsp.CompletionItem
	referenceLocations []lsp.Location
}

// New returns a Controller with no buffer open.
func New(registry *syntax.Registry, languages []code.Language, theme config.Theme, lspClient *lsp.Client) *Controller {
	return &Controller{
		Registry:  registry,
		Languages: languages,
		Theme:     theme,
		LSP:       lspClient,
		codes:     make(map[string]*code.Code),
		History:   cursor.NewHistory(200),
		clipboard: clipboard.New(),
	}
}

// Active returns the currently open buffer, or nil if none is open.
func (ctl *Controller) Active() *code.Code {
	return ctl.active
}

// CursorPosition returns the active buffer's cursor row/column, or (0,0) if
// no buffer is open.
func (ctl *Controller) CursorPosition() (row, col int) {
	if ctl.active == nil {
		return 0, 0
	}
	row, col, _, _ = ctl.active.CursorPosition()
	return row, col
}

// setCursor moves the cursor within the active buffer and collapses the
// selection to it unless extend is true.
func (ctl *Controller) setCursor(row, col int, extend bool) {
	if ctl.active == nil {
		return
	}
	_, _, sy, sx := ctl.active.CursorPosition()
	ctl.active.SetCursorPosition(row, col, sy, sx)
	p := cursor.Point{Row: row, Col: col}
	if extend {
		ctl.Selection = ctl.Selection.ExtendTo(p)
		ctl.Selection.Active = true
	} else {
		ctl.Selection = cursor.NewSelection(p)
	}
	ctl.anchorNode = nil
}

// pushHistory records the current cursor position in the jump history
// (Ctrl+O / Ctrl+P), skipping if no buffer is open.
func (ctl *Controller) pushHistory() {
	if ctl.active == nil {
		return
	}
	row, col, sy, sx := ctl.active.CursorPosition()
	ctl.History.Push(cursor.Position{
		File: ctl.active.AbsPath(), Row: row, Col: col, ScrollY: sy, ScrollX: sx,
	})
}

// notifyChange forwards an edit to the active buffer's language server as a
// full-document sync. SPEC_FULL.md's failure semantics apply here directly:
// transport/protocol errors from this call are swallowed, since a
// did_change notification has no response to fail loudly about and the
// server may simply not be running yet.
func (ctl *Controller) notifyChange(ctx context.Context) {
	if ctl.active == nil || ctl.LSP == nil {
		return
	}
	path := ctl.active.AbsPath()
	if path == "" {
		return
	}
	text := ctl.active.Text()
	_ = ctl.LSP.ChangeDocument(ctx, path, []lsp.TextDocumentContentChangeEvent{{Text: text}})
}

// Save writes the active buffer to disk. Per SPEC_FULL.md §7, a save
// failure is not swallowed: it propagates, since silently losing a save is
// worse than crashing loudly enough to be noticed.
func (ctl *Controller) Save() {
	if ctl.active == nil {
		return
	}
	if err := ctl.active.Save(); err != nil {
		panic(err)
	}
}
