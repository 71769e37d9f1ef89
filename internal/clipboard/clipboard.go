// Package clipboard wraps the system clipboard for the editor controller's
// copy/cut/paste keymap entries (Ctrl+C/X/V), grounded on the teacher's
// choice of github.com/atotto/clipboard. When the system clipboard is
// unavailable (headless test environments, some Linux setups with neither
// xclip nor xsel installed), Read/Write fall back to an in-process cache so
// copy-then-paste within a single session still works.
package clipboard

import "github.com/atotto/clipboard"

// Clipboard is the controller-held clipboard handle. It is not safe for
// concurrent use from multiple goroutines; the editor controller is
// single-threaded with respect to key handling.
type Clipboard struct {
	cache string
}

// New returns a Clipboard with an empty fallback cache.
func New() *Clipboard {
	return &Clipboard{}
}

// Write copies text to the system clipboard, and always updates the
// fallback cache so Read still works if the system clipboard call fails.
func (c *Clipboard) Write(text string) error {
	c.cache = text
	return clipboard.WriteAll(text)
}

// Read returns the system clipboard contents, falling back to the last
// value written through this Clipboard if the system call fails.
func (c *Clipboard) Read() string {
	if text, err := clipboard.ReadAll(); err == nil {
		return text
	}
	return c.cache
}
