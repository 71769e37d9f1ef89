// Package search implements the global-search overlay (Ctrl+G from inside
// the local-search box): a plain substring/regexp scan across every file
// under the workspace root, grounded on the shape of the teacher's
// internal/project/search content searcher but stripped of its VFS cache
// and ranking layers — the editor controller re-runs search on demand
// rather than keeping a live index.
package search

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Match is one hit: the file it was found in, 0-indexed line and column,
// and the full line text for the overlay to render.
type Match struct {
	Path   string
	Line   int
	Column int
	Text   string
}

// Global scans every regular file under root whose name does not match an
// ignored directory (.git, node_modules) for pattern, returning at most
// limit matches. pattern is treated as a literal substring unless it parses
// as a valid regexp with special characters.
func Global(root, pattern string, limit int) ([]Match, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	var matches []Match
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if isIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= limit {
			return nil
		}
		found, err := scanFile(path, re, limit-len(matches))
		if err != nil {
			return nil
		}
		matches = append(matches, found...)
		return nil
	})
	if walkErr != nil {
		return matches, walkErr
	}
	return matches, nil
}

func scanFile(path string, re *regexp.Regexp, remaining int) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		text := scanner.Text()
		if loc := re.FindStringIndex(text); loc != nil {
			matches = append(matches, Match{Path: path, Line: line, Column: loc[0], Text: text})
			if len(matches) >= remaining {
				break
			}
		}
		line++
	}
	return matches, scanner.Err()
}

func compile(pattern string) (*regexp.Regexp, error) {
	if re, err := regexp.Compile(pattern); err == nil {
		return re, nil
	}
	return regexp.Compile(regexp.QuoteMeta(pattern))
}

func isIgnoredDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", ".red":
		return true
	default:
		return strings.HasPrefix(name, ".") && name != "."
	}
}
