package identity

import (
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	singleLastExact      = 0.8
	singleFirstExact     = 0.7
	singleLastSubstring  = 0.4
	singleFirstSubstring = 0.3

	multiLastExact      = 0.6
	multiLastSubstring  = 0.3
	multiFirstExact     = 0.4
	multiFirstInitial   = 0.2
	multiFirstSubstring = 0.1
)

// Score rates how well a free-text name matches an entry, from 0 to 1.
func Score(query string, entry Entry) float64 {
	tokens := nameTokens(query)
	if len(tokens) == 0 {
		return 0
	}
	first, last := entryNames(entry)

	if len(tokens) == 1 {
		q := tokens[0]
		switch {
		case last != "" && q == last:
			return singleLastExact
		case first != "" && q == first:
			return singleFirstExact
		case overlaps(q, last):
			return singleLastSubstring
		case overlaps(q, first):
			return singleFirstSubstring
		default:
			return 0
		}
	}

	qFirst := tokens[0]
	qLast := strings.Join(tokens[1:], " ")

	var score float64
	switch {
	case last != "" && qLast == last:
		score += multiLastExact
	case overlaps(qLast, last):
		score += multiLastSubstring
	}
	switch {
	case first != "" && qFirst == first:
		score += multiFirstExact
	case len([]rune(qFirst)) == 1 && first != "" && strings.HasPrefix(first, qFirst):
		score += multiFirstInitial
	case overlaps(qFirst, first):
		score += multiFirstSubstring
	}
	if score > 1 {
		score = 1
	}
	return score
}

// BestMatch returns the highest scoring entry. Equal scores are ordered by
// Jaro-Winkler similarity of the full names and then by the lower id.
func BestMatch(query string, entries []Entry) (Entry, float64, bool) {
	var (
		best      Entry
		bestScore float64
		bestSim   float64
		found     bool
	)
	normalizedQuery := Normalize(query)
	for _, entry := range entries {
		score := Score(query, entry)
		if score <= 0 {
			continue
		}
		sim := matchr.JaroWinkler(normalizedQuery, Normalize(entry.DisplayName()), false)
		if !found || score > bestScore ||
			(score == bestScore && sim > bestSim) ||
			(score == bestScore && sim == bestSim && lessID(entry.ID, best.ID)) {
			best, bestScore, bestSim, found = entry, score, sim, true
		}
	}
	return best, bestScore, found
}

// SplitName returns the first token and the remaining tokens of a name.
func SplitName(name string) (string, string) {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

func nameTokens(name string) []string {
	fields := strings.Fields(Normalize(name))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func entryNames(entry Entry) (string, string) {
	first := strings.Trim(Normalize(entry.Firstname), ".")
	last := strings.Trim(foldName(entry.Lastname), ".")
	if first == "" && last == "" {
		tokens := nameTokens(entry.Name)
		if len(tokens) == 0 {
			return "", ""
		}
		first, last = SplitName(strings.Join(tokens, " "))
	}
	return first, last
}

func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func lessID(a, b string) bool {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
