package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme is the resolved color scheme: a capture-name to hex-color map for
// syntax highlighting, plus the reserved UI-surface colors.
type Theme struct {
	Captures map[string]string

	LineNumber  string // lncolor
	Search      string // scolor
	Selection   string // selcolor
	Error       string // ecolor
	LeftBorder  string // lbcolor
	Dir         string // dircolor
	File        string // filecolor
	ActiveFile  string // activefilecolor
}

// LoadTheme reads a YAML theme file mapping capture names (and the reserved
// UI keys) to hex colors. A missing file yields DefaultTheme.
func LoadTheme(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTheme(), nil
		}
		return Theme{}, fmt.Errorf("theme: reading %s: %w", path, err)
	}
	return ParseTheme(data)
}

// ParseTheme decodes already-resolved theme bytes, used by the CLI entry
// point when the theme came from the embedded bundle rather than a path
// os.ReadFile can see.
func ParseTheme(data []byte) (Theme, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Theme{}, fmt.Errorf("theme: parsing: %w", err)
	}

	t := Theme{Captures: make(map[string]string, len(raw))}
	for k, v := range raw {
		switch k {
		case "lncolor":
			t.LineNumber = v
		case "scolor":
			t.Search = v
		case "selcolor":
			t.Selection = v
		case "ecolor":
			t.Error = v
		case "lbcolor":
			t.LeftBorder = v
		case "dircolor":
			t.Dir = v
		case "filecolor":
			t.File = v
		case "activefilecolor":
			t.ActiveFile = v
		default:
			t.Captures[k] = v
		}
	}
	return t, nil
}

// Color looks up the hex color for a highlight capture name, falling back
// through its dotted-path prefixes ("function.builtin" -> "function") the
// way tree-sitter theme lookups conventionally do, and returning ok=false
// if no prefix matches.
func (t Theme) Color(capture string) (string, bool) {
	for capture != "" {
		if c, ok := t.Captures[capture]; ok {
			return c, true
		}
		i := lastDot(capture)
		if i < 0 {
			break
		}
		capture = capture[:i]
	}
	return "", false
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// DefaultTheme is used when no theme file is configured or found anywhere
// in the RED_HOME / ~/.red / embedded lookup chain.
func DefaultTheme() Theme {
	return Theme{
		Captures: map[string]string{
			"keyword":  "#C586C0",
			"string":   "#CE9178",
			"comment":  "#6A9955",
			"function": "#DCDCAA",
			"type":     "#4EC9B0",
			"number":   "#B5CEA8",
			"variable": "#9CDCFE",
		},
		LineNumber: "#858585",
		Search:     "#613214",
		Selection:  "#264F78",
		Error:      "#F44747",
		LeftBorder: "#3C3C3C",
		Dir:        "#DCB67A",
		File:       "#CCCCCC",
		ActiveFile: "#FFFFFF",
	}
}
