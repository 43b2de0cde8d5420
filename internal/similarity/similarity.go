// Package similarity scores the lexical overlap between two free-text
// descriptions.
package similarity

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// minTokenLen is the shortest token that counts towards a score.
const minTokenLen = 3

// Score returns an integer percentage in [0, 100] estimating how much of a
// overlaps b. Each token of a earns a full point for an exact match in b and
// half a point for every token of b that contains it or is contained in it,
// so a single token can collect several partial credits.
func Score(a, b string) int {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var matches float64
	for x := range ta {
		if tb[x] {
			matches++
		}
		for y := range tb {
			if strings.Contains(y, x) || strings.Contains(x, y) {
				matches += 0.5
			}
		}
	}

	score := math.Round(matches / float64(max(len(ta), len(tb))) * 100)
	return int(min(max(score, 0), 100))
}

func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(strings.TrimSpace(s))) {
		if utf8.RuneCountInString(t) >= minTokenLen {
			set[t] = true
		}
	}
	return set
}

// Tokens returns the distinct scoring tokens of s in sorted order.
func Tokens(s string) []string {
	set := tokens(s)
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
