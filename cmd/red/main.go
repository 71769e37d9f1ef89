// Command red is a console text editor: a tree-sitter-highlighted buffer
// with LSP-backed navigation, completion and diagnostics, over a single
// scrollable pane plus an optional file-tree panel.
//
// Usage: red [PATH]
//
// With no path, or ".", or "./", red opens the current directory with the
// file-tree panel focused. Any other path opens that file, panel closed.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/red-editor/red/internal/assets"
	"github.com/red-editor/red/internal/config"
	"github.com/red-editor/red/internal/editor"
	"github.com/red-editor/red/internal/filetree"
	"github.com/red-editor/red/internal/lsp"
	"github.com/red-editor/red/internal/render"
	"github.com/red-editor/red/internal/syntax"
	"github.com/red-editor/red/internal/term"
)

const helpText = `red [PATH]

With no path, or "." / "./", opens the current directory with the
file-tree panel focused. Any other path opens that file, panel closed.

Environment:
  RED_HOME   override for config/asset lookup (default ~/.red)
  RED_LOG    file path; when set, red opens it for appending (creating it
             if needed); no log messages are written to it

Keys: Ctrl+Q quit, Ctrl+S save, Ctrl+C/X/V copy/cut/paste, Ctrl+D duplicate,
Ctrl+Z/Y undo/redo, Ctrl+O/P cursor history, Ctrl+F search, Ctrl+G
definition (or global search from inside Ctrl+F), Ctrl+R references,
Ctrl+E errors, Ctrl+H hover, Ctrl+Space completion, Ctrl+T toggle tree.
`

func main() {
	args := os.Args[1:]
	for _, a := range args {
		if a == "-h" || a == "--help" {
			fmt.Print(helpText)
			os.Exit(0)
		}
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	logFile := setupLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	scr, err := term.NewTerminal()
	if err != nil {
		fmt.Fprintln(os.Stderr, "red: terminal init:", err)
		os.Exit(1)
	}
	if err := scr.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "red: terminal init:", err)
		os.Exit(1)
	}
	defer deinit(scr)

	run(scr, path)
}

// deinit restores the terminal to its original state: raw mode off, alt
// screen left, mouse capture off, bracketed paste off, caret shown. Called
// on normal exit and, via the recover in run, before a panic propagates.
func deinit(scr term.Screen) {
	scr.ShowCursor(0, 0)
	scr.DisableMouse()
	scr.DisablePaste()
	scr.Shutdown()
}

func setupLogging() *os.File {
	path := os.Getenv("RED_LOG")
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}
	return f
}

func run(scr term.Screen, path string) {
	defer func() {
		if r := recover(); r != nil {
			deinit(scr)
			panic(r)
		}
	}()

	scr.EnableMouse()
	scr.EnablePaste()

	cfg, theme := loadConfig()
	registry := syntax.DefaultRegistry()

	ctx := context.Background()
	lspClient := lsp.NewClient(lsp.WithAutoDetectServers(true))
	_ = lspClient.Start(ctx)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		_ = lspClient.Shutdown(shutdownCtx)
	}()

	ctl := editor.New(registry, cfg.Languages, theme, lspClient)
	pipeline := render.New()

	var tree *filetree.Tree
	showPanel := false

	info, statErr := os.Stat(path)
	if path == "." || path == "./" || (statErr == nil && info.IsDir()) {
		root := path
		if statErr != nil {
			root = "."
		}
		t, err := filetree.Open(root)
		if err == nil {
			tree = t
			showPanel = true
			ctl.PanelFocused = true
			defer tree.Close()
		}
	} else {
		if err := ctl.OpenFile(ctx, path); err != nil {
			fmt.Fprintln(os.Stderr, "red:", err)
		}
	}

	width, height := scr.Size()
	vp := render.Viewport{Rows: height, Cols: width, GutterWidth: 5}
	if showPanel {
		vp.LeftPanelWidth = 24
	}
	scr.OnResize(func(w, h int) {
		width, height = w, h
		vp.Rows, vp.Cols = h, w
	})

	for {
		if c := ctl.Active(); c != nil {
			row, col := ctl.CursorPosition()
			var diags []lsp.Diagnostic
			if c.AbsPath() != "" {
				diags = lspClient.Diagnostics(c.AbsPath())
			}
			pipeline.Paint(scr, c, ctl.Selection, vp, theme, diags, render.Overlay{
				Kind:     ctl.Overlay,
				Lines:    ctl.OverlayLines,
				Selected: ctl.OverlaySelected,
			}, row, col)
		} else {
			scr.Clear()
			scr.Show()
		}

		ev := scr.PollEvent()
		switch ev.Type {
		case term.EventKey:
			if ctl.HandleKey(ctx, ev) {
				return
			}
		case term.EventMouse:
			ctl.HandleMouse(ctx, ev, vp)
		case term.EventResize:
			vp.Rows, vp.Cols = ev.Height, ev.Width
		}
	}
}

func loadConfig() (config.Config, config.Theme) {
	home := config.Home()
	cfgPath := filepath.Join(home, "config.toml")

	cfg, err := config.Load(cfgPath)
	if err != nil || len(cfg.Languages) == 0 {
		if data, _, rerr := assets.Resolve("config.toml"); rerr == nil {
			if parsed, perr := config.ParseConfig(data); perr == nil {
				cfg = parsed
			}
		}
	}

	themeRel := cfg.ThemePath
	if themeRel == "" {
		themeRel = assets.DefaultThemePath
	}
	theme, terr := config.LoadTheme(filepath.Join(home, themeRel))
	if terr != nil || len(theme.Captures) == 0 {
		if data, _, rerr := assets.Resolve(themeRel); rerr == nil {
			if parsed, perr := config.ParseTheme(data); perr == nil {
				theme = parsed
			}
		} else {
			theme = config.DefaultTheme()
		}
	}

	return cfg, theme
}
