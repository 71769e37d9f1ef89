package syntax

import (
	"embed"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	bashforest "github.com/alexaandru/go-sitter-forest/bash"
	goforest "github.com/alexaandru/go-sitter-forest/golang"
	jsforest "github.com/alexaandru/go-sitter-forest/javascript"
	jsonforest "github.com/alexaandru/go-sitter-forest/json"
	mdforest "github.com/alexaandru/go-sitter-forest/markdown"
	pyforest "github.com/alexaandru/go-sitter-forest/python"
)

//go:embed queries/*.scm
var queriesFS embed.FS

func mustQuery(name string) []byte {
	b, err := queriesFS.ReadFile("queries/" + name)
	if err != nil {
		return nil
	}
	return b
}

// DefaultRegistry builds the Registry for the language set bundled with
// this binary. Each grammar's LanguageLoader defers the actual
// tree-sitter-bare language construction to first use, so opening a plain
// text file never pays for a grammar it doesn't need.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&Grammar{
		Name:       "go",
		Highlights: mustQuery("go.scm"),
		Tests:      mustQuery("go_tests.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(goforest.GetLanguage())
		},
	}, "go")

	r.Register(&Grammar{
		Name:       "python",
		Highlights: mustQuery("python.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(pyforest.GetLanguage())
		},
	}, "py", "pyi")

	r.Register(&Grammar{
		Name:       "javascript",
		Highlights: mustQuery("javascript.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(jsforest.GetLanguage())
		},
	}, "js", "mjs", "cjs", "jsx")

	r.Register(&Grammar{
		Name:       "bash",
		Highlights: mustQuery("bash.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(bashforest.GetLanguage())
		},
	}, "sh", "bash")

	r.Register(&Grammar{
		Name:       "json",
		Highlights: mustQuery("json.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(jsonforest.GetLanguage())
		},
	}, "json")

	r.Register(&Grammar{
		Name:       "markdown",
		Highlights: mustQuery("markdown.scm"),
		LanguageLoader: func() sitter.Language {
			return sitter.NewLanguage(mdforest.GetLanguage())
		},
	}, "md", "markdown")

	return r
}
