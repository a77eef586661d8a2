package fuzzy

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const DefaultCutoff = 0.6

// BestMatches maps every candidate to its closest name in available, dropping
// candidates whose best ratio is below cutoff. The result follows candidate
// order and keeps duplicates.
func BestMatches(candidates, available []string, cutoff float64) []string {
	if len(candidates) == 0 || len(available) == 0 {
		return []string{}
	}
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultCutoff
	}
	pool := make([][]string, len(available))
	for i, name := range available {
		pool[i] = chars(name)
	}
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if name, ok := closest(candidate, available, pool, cutoff); ok {
			out = append(out, name)
		}
	}
	return out
}

// Ratio is the SequenceMatcher similarity of a and b over characters.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func closest(candidate string, available []string, pool [][]string, cutoff float64) (string, bool) {
	m := difflib.NewMatcher(nil, chars(candidate))
	best := -1.0
	bestName := ""
	for i, seq := range pool {
		m.SetSeq1(seq)
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		// equal scores resolve to the larger name
		if score > best || (score == best && available[i] > bestName) {
			best = score
			bestName = available[i]
		}
	}
	return bestName, best >= 0
}

func chars(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "")
}
