// Package assets resolves theme and grammar files through the editor's
// three-tier lookup chain: $RED_HOME/<path>, then ~/.red/<path>, then the
// bundle embedded in the binary. Matches SPEC_FULL.md's asset lookup order
// and the teacher pack's pattern of shipping a read-only fallback bundle
// via go:embed (internal/project/vfs embeds its fixture tree the same way).
package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

//go:embed bundled
var bundled embed.FS

// Resolve returns the contents of relPath, trying $RED_HOME, then ~/.red,
// then the embedded bundle, in that order. relPath is always relative,
// e.g. "themes/default.yaml" or "langs/go/highlights.scm".
func Resolve(relPath string) ([]byte, string, error) {
	if home := os.Getenv("RED_HOME"); home != "" {
		p := filepath.Join(home, relPath)
		if data, err := os.ReadFile(p); err == nil {
			return data, p, nil
		}
	}

	if h, err := homedir.Dir(); err == nil {
		p := filepath.Join(h, ".red", relPath)
		if data, err := os.ReadFile(p); err == nil {
			return data, p, nil
		}
	}

	p := filepath.Join("bundled", relPath)
	data, err := fs.ReadFile(bundled, p)
	if err != nil {
		return nil, "", err
	}
	return data, "embedded:" + relPath, nil
}

// DefaultThemePath is the relative path resolved when no `theme = "..."`
// entry is present in the language config.
const DefaultThemePath = "themes/default.yaml"
