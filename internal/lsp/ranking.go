package lsp

import (
	"sort"
	"strings"
)

// RankCompletions orders completion items the way a user expects to see them
// below the cursor: items equal to the word being typed first, then items
// that extend it (shortest extension first), then everything else ordered by
// how many leading characters it shares with prevWord.
//
// This is the ranking rule completion popups in the editor controller use;
// it is independent of any one language server's own SortText ordering,
// which servers are free to omit or leave blank.
func RankCompletions(items []CompletionItem, prevWord string) []CompletionItem {
	if len(items) <= 1 {
		return items
	}

	word := strings.ToLower(prevWord)
	ranked := make([]CompletionItem, len(items))
	copy(ranked, items)

	tier := func(label string) int {
		l := strings.ToLower(label)
		switch {
		case l == word:
			return 0
		case strings.HasPrefix(l, word):
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ta, tb := tier(a.Label), tier(b.Label)
		if ta != tb {
			return ta < tb
		}
		switch ta {
		case 1:
			// Shorter extension of the prefix sorts earlier.
			if len(a.Label) != len(b.Label) {
				return len(a.Label) < len(b.Label)
			}
		case 2:
			ca, cb := commonPrefixLen(word, strings.ToLower(a.Label)), commonPrefixLen(word, strings.ToLower(b.Label))
			if ca != cb {
				return ca > cb
			}
		}
		return strings.ToLower(a.Label) < strings.ToLower(b.Label)
	})

	return ranked
}

// commonPrefixLen returns how many leading characters a and b share.
func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
