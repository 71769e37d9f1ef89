package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for a missing file", err)
	}
	if len(cfg.Languages) != 0 || cfg.ThemePath != "" {
		t.Fatalf("Load() on missing file = %+v, want zero value", cfg)
	}
}

func TestParseConfigDecodesLanguageTable(t *testing.T) {
	data := []byte(`
theme = "themes/default.yaml"

[[language]]
name = "go"
types = [".go"]
comment = "//"
lsp = ["gopls"]
executable = true
exec = "go run {file}"

[language.indent]
width = 1
unit = "\t"
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.ThemePath != "themes/default.yaml" {
		t.Fatalf("ThemePath = %q, want %q", cfg.ThemePath, "themes/default.yaml")
	}
	if len(cfg.Languages) != 1 {
		t.Fatalf("len(Languages) = %d, want 1", len(cfg.Languages))
	}
	lang := cfg.Languages[0]
	if lang.Name != "go" || lang.Comment != "//" || lang.IndentUnit != "\t" || lang.IndentWidth != 1 {
		t.Fatalf("Languages[0] = %+v, unexpected decode", lang)
	}
	if len(lang.LSP) != 1 || lang.LSP[0] != "gopls" {
		t.Fatalf("Languages[0].LSP = %v, want [gopls]", lang.LSP)
	}
}

func TestParseConfigMalformedTOML(t *testing.T) {
	if _, err := ParseConfig([]byte("not = [valid")); err == nil {
		t.Fatal("ParseConfig() on malformed TOML: want error, got nil")
	}
}

func TestHomeRespectsRedHomeEnv(t *testing.T) {
	t.Setenv("RED_HOME", "/tmp/custom-red-home")
	if got := Home(); got != "/tmp/custom-red-home" {
		t.Fatalf("Home() = %q, want %q", got, "/tmp/custom-red-home")
	}
}
