package code

import "strings"

// Language is the per-language editing configuration: comment token,
// indentation, LSP server command, and run/test shell templates. Loaded
// from the TOML config's `[[language]]` table (internal/config) and
// looked up by file extension or by name.
//
// Grounded on original_source/src/config.rs's Language record (comment,
// indent.{width,unit}, lsp, executable/exec/exectest), carried over
// unchanged in shape since SPEC_FULL.md's config section names the exact
// same fields.
type Language struct {
	Name        string
	Types       []string // file extensions, without the leading dot
	Comment     string
	LSP         []string // server command + args, empty if none configured
	IndentUnit  string   // " " or "\t"
	IndentWidth int
	Executable  bool
	Exec        string // whole-file run template, may reference {file}
	ExecTest    string // per-test run template, may reference {test} and {file}
}

// IndentString returns one indentation level's literal text.
func (l *Language) IndentString() string {
	if l == nil {
		return "\t"
	}
	if l.IndentUnit == " " {
		w := l.IndentWidth
		if w <= 0 {
			w = 2
		}
		return strings.Repeat(" ", w)
	}
	return "\t"
}

// DetectLanguage picks a language by matching path's suffix against each
// candidate's Types, falling back to "text" when nothing matches. This
// mirrors the teacher-domain's extension-table fallback path (the Rust
// original also tries a dedicated language-sniffing crate first; this
// repo has no equivalent dependency in the pack, so detection here is
// extension-only — see DESIGN.md).
func DetectLanguage(path string, languages []Language) string {
	for _, l := range languages {
		for _, ext := range l.Types {
			if strings.HasSuffix(path, ext) {
				return l.Name
			}
		}
	}
	return "text"
}

// FindLanguage returns the configuration entry with the given name.
func FindLanguage(name string, languages []Language) *Language {
	for i := range languages {
		if languages[i].Name == name {
			return &languages[i]
		}
	}
	return nil
}
