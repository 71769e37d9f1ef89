// (continuation of package term: event model and screen interface)
package term


// CursorStyle defines how the cursor appears.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
	CursorHidden
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventPaste
	EventFocus
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields
	MouseX, MouseY int
	MouseButton    MouseButton

	// Resize event fields
	Width, Height int

	// Focus event fields
	Focused bool

	// Paste event fields
	PasteText string
}

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlSpace
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton represents mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
)

// Screen defines the interface for terminal/display backends.
// Implementations handle actual drawing to the terminal or other display surfaces.
type Screen interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	// Must be called when done with the backend.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// OnResize registers a callback for terminal resize events.
	OnResize(callback func(width, height int))

	// SetCell sets a single cell at the given position.
	// Positions outside the terminal are silently ignored.
	SetCell(x, y int, cell Cell)

	// GetCell returns the cell at the given position.
	// Returns an empty cell for positions outside the terminal.
	GetCell(x, y int) Cell

	// Fill fills a rectangular region with the given cell.
	Fill(rect ScreenRect, cell Cell)

	// Clear clears the entire screen with the default style.
	Clear()

	// Show synchronizes the internal buffer with the actual display.
	// Call this after making changes to flush them to the screen.
	Show()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// SetCursorStyle changes the cursor appearance.
	SetCursorStyle(style CursorStyle)

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)

	// HasTrueColor returns true if the backend supports 24-bit color.
	HasTrueColor() bool

	// Beep produces an audible or visual bell.
	Beep()

	// EnableMouse enables mouse event reporting.
	EnableMouse()

	// DisableMouse disables mouse event reporting.
	DisableMouse()

	// EnablePaste enables bracketed paste mode.
	EnablePaste()

	// DisablePaste disables bracketed paste mode.
	DisablePaste()

	// Suspend suspends the terminal (for shell escape).
	Suspend() error

	// Resume resumes from suspension.
	Resume() error
}

// NullScreen is a no-op backend for testing.
type NullScreen struct {
	width, height int
	cells         [][]Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	cursorStyle   CursorStyle
	resizeHandler func(width, height int)
	events        chan Event
}

// NewNullScreen creates a null backend with the given dimensions.
func NewNullScreen(width, height int) *NullScreen {
	return &NullScreen{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullScreen) Init() error {
	b.cells = make([][]Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = EmptyCell()
		}
	}
	return nil
}

func (b *NullScreen) Shutdown() {}

func (b *NullScreen) Size() (int, int) {
	return b.width, b.height
}

func (b *NullScreen) OnResize(callback func(width, height int)) {
	b.resizeHandler = callback
}

func (b *NullScreen) SetCell(x, y int, cell Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *NullScreen) GetCell(x, y int) Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return EmptyCell()
}

func (b *NullScreen) Fill(rect ScreenRect, cell Cell) {
	for y := rect.Top; y < rect.Bottom && y < b.height; y++ {
		for x := rect.Left; x < rect.Right && x < b.width; x++ {
			if x >= 0 && y >= 0 {
				b.cells[y][x] = cell
			}
		}
	}
}

func (b *NullScreen) Clear() {
	empty := EmptyCell()
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = empty
		}
	}
}

func (b *NullScreen) Show() {}

func (b *NullScreen) ShowCursor(x, y int) {
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullScreen) HideCursor() {
	b.cursorVisible = false
}

func (b *NullScreen) SetCursorStyle(style CursorStyle) {
	b.cursorStyle = style
}

func (b *NullScreen) PollEvent() Event {
	return <-b.events
}

func (b *NullScreen) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

func (b *NullScreen) HasTrueColor() bool { return true }
func (b *NullScreen) Beep()              {}
func (b *NullScreen) EnableMouse()       {}
func (b *NullScreen) DisableMouse()      {}
func (b *NullScreen) EnablePaste()       {}
func (b *NullScreen) DisablePaste()      {}
func (b *NullScreen) Suspend() error     { return nil }
func (b *NullScreen) Resume() error      { return nil }

// CursorPosition returns the current cursor position for testing.
func (b *NullScreen) CursorPosition() (x, y int, visible bool) {
	return b.cursorX, b.cursorY, b.cursorVisible
}

// CursorStyleValue returns the current cursor style for testing.
func (b *NullScreen) CursorStyleValue() CursorStyle {
	return b.cursorStyle
}

// Resize simulates a terminal resize for testing.
func (b *NullScreen) Resize(width, height int) {
	b.width = width
	b.height = height
	b.cells = make([][]Cell, height)
	for i := range b.cells {
		b.cells[i] = make([]Cell, width)
		for j := range b.cells[i] {
			b.cells[i][j] = EmptyCell()
		}
	}
	if b.resizeHandler != nil {
		b.resizeHandler(width, height)
	}
}
