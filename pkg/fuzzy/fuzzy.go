package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings
// This measures how many single-character edits (insertions, deletions, or substitutions)
// are required to change one string into another
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rolling rows are enough
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
// threshold is the maximum allowed edit distance
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" || text == "" {
		return false
	}

	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}

	// Short texts are also compared as a whole
	if len(text) < 50 {
		maxDistance := threshold + len(query)/5
		if LevenshteinDistance(query, text) <= maxDistance {
			return true
		}
	}

	return false
}

// Threshold returns the typo tolerance for a query of the given length
func Threshold(query string) int {
	n := len([]rune(normalizeString(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// MatchTask checks if a task's title or description matches the query
func MatchTask(query, title, description string) bool {
	threshold := Threshold(query)

	if FuzzyMatch(query, title, threshold) {
		return true
	}

	// Only the start of long descriptions is scanned
	if description != "" {
		snippet := []rune(description)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		if FuzzyMatch(query, string(snippet), threshold) {
			return true
		}
	}

	return false
}

// RelevanceScore scores how relevant a task is to a query
// Higher score = more relevant, title hits outweigh description hits
func RelevanceScore(query, title, description string) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}
	return fieldScore(query, normalizeString(title), 100, 50) +
		fieldScore(query, normalizeString(description), 60, 20)
}

func fieldScore(query, text string, containsWeight, wordWeight float64) float64 {
	if text == "" {
		return 0
	}

	score := 0.0
	if strings.Contains(text, query) {
		score += containsWeight
		if containsWord(text, query) {
			score += wordWeight
		}
		return score
	}

	for _, word := range strings.Fields(text) {
		dist := LevenshteinDistance(query, word)
		if dist <= 2 {
			score += containsWeight/2 - float64(dist)*15
		}
		if strings.HasPrefix(word, query) {
			score += containsWeight * 0.4
		}
	}
	return score
}

// Helper functions

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// normalizeString lowercases, folds accents and collapses whitespace
func normalizeString(s string) string {
	s = strings.ToLower(removeAccents(s))
	return strings.Join(strings.Fields(s), " ")
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents strips diacritical marks so "çağrı" matches "cagri"
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// Letters with no decomposition
	return strings.NewReplacer("ı", "i", "đ", "d", "Đ", "D", "ø", "o", "ł", "l").Replace(out)
}
