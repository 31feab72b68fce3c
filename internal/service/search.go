package service

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Match is a search hit against a transcript item.
type Match struct {
	Index int
	ID    string
	Score float64 // 0..1, higher is better
}

const minSearchScore = 0.6

// Search ranks transcript items against query. Each query word is compared
// with every word of the message body and analysis summary; an item scores
// the mean of its best per-word similarities. Ties keep transcript order.
func Search(items []Item, query string) []Match {
	terms := words(query)
	if len(terms) == 0 {
		return nil
	}
	var out []Match
	for i, it := range items {
		hay := words(it.Message.Body + " " + it.Analysis.Summary + " " + it.Message.Author)
		if len(hay) == 0 {
			continue
		}
		total := 0.0
		for _, q := range terms {
			best := 0.0
			for _, w := range hay {
				best = max(best, wordSimilarity(q, w))
				if best == 1 {
					break
				}
			}
			total += best
		}
		score := total / float64(len(terms))
		if score >= minSearchScore {
			out = append(out, Match{Index: i, ID: it.Message.ID, Score: score})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

func wordSimilarity(q, w string) float64 {
	if strings.HasPrefix(w, q) {
		return 1
	}
	n := max(utf8.RuneCountInString(q), utf8.RuneCountInString(w))
	if n == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(q, w))/float64(n)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
