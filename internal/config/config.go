// Package config loads the editor's TOML language table and YAML theme,
// resolving both through the RED_HOME / ~/.red / embedded-bundle lookup
// chain described in internal/assets.
//
// Grounded on the teacher's internal/config/loader/toml.go for the
// missing-file-is-not-an-error TOML read pattern; the teacher's layered
// registry/schema/notify machinery is not carried over since this editor
// has exactly two config documents (language table, theme) with no live
// reload or per-workspace overlay.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/red-editor/red/internal/code"
)

// indentTable mirrors the `indent = { width, unit }` sub-table in the
// language config file.
type indentTable struct {
	Width int    `toml:"width"`
	Unit  string `toml:"unit"`
}

// languageEntry is the on-disk shape of a `[[language]]` table.
type languageEntry struct {
	Name       string      `toml:"name"`
	Types      []string    `toml:"types"`
	Comment    string      `toml:"comment"`
	LSP        []string    `toml:"lsp"`
	Indent     indentTable `toml:"indent"`
	Executable bool        `toml:"executable"`
	Exec       string      `toml:"exec"`
	ExecTest   string      `toml:"exectest"`
}

// document is the root of the language config file.
type document struct {
	Theme     string          `toml:"theme"`
	Languages []languageEntry `toml:"language"`
}

// Config is the resolved, in-memory configuration: the theme path on disk
// and the per-language editing rules that internal/code and internal/lsp
// read from.
type Config struct {
	ThemePath string
	Languages []code.Language
}

// Load reads and decodes the language config file at path. A missing file
// is not an error: it yields a zero-value Config so the editor can still
// start with plain-text-only, no-LSP defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes already-resolved config bytes, used by the CLI entry
// point when falling back to the embedded default config.
func ParseConfig(data []byte) (Config, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("config: parsing: %w", err)
	}

	langs := make([]code.Language, len(doc.Languages))
	for i, e := range doc.Languages {
		langs[i] = code.Language{
			Name:        e.Name,
			Types:       e.Types,
			Comment:     e.Comment,
			LSP:         e.LSP,
			IndentUnit:  e.Indent.Unit,
			IndentWidth: e.Indent.Width,
			Executable:  e.Executable,
			Exec:        e.Exec,
			ExecTest:    e.ExecTest,
		}
	}

	return Config{ThemePath: doc.Theme, Languages: langs}, nil
}

// Home returns $RED_HOME if set, else ~/.red.
func Home() string {
	if h := os.Getenv("RED_HOME"); h != "" {
		return h
	}
	if h, err := homedir.Dir(); err == nil {
		return filepath.Join(h, ".red")
	}
	return ".red"
}
