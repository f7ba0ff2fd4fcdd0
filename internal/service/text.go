package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reURL = regexp.MustCompile(`https?://\S+|www\.\S+`)

	// Crying characters: runs of parentheses or emphasis punctuation, the
	// typical markers of low-effort reaction comments.
	reCrying = regexp.MustCompile(`[()!?]{2,}`)

	reWord = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// isGoodText is the quality gate: no embedded links, length strictly between
// 15 and 120 characters (runes, not bytes), and no literal "Edit" (a marker
// that the remark was edited and its quality is uncertain).
func isGoodText(text string) bool {
	n := utf8.RuneCountInString(text)
	return !reURL.MatchString(text) &&
		n > 15 &&
		n < 120 &&
		!strings.Contains(text, "Edit")
}

// tokenSet returns the set of lowercase words in text.
func tokenSet(text string) map[string]struct{} {
	words := reWord.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// cryingRuns counts crying-character runs in text.
func cryingRuns(text string) int {
	return len(reCrying.FindAllString(text, -1))
}

// tooNoisy is the noise gate: crying runs must not exceed 20% of the
// token-set size.
func tooNoisy(text string, tokens map[string]struct{}) bool {
	return float64(len(tokens))/100*20 < float64(cryingRuns(text))
}

// sameTokenSet reports whether two token sets hold the same distinct words:
// equal size and full mutual intersection.
func sameTokenSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for w := range a {
		if _, ok := b[w]; !ok {
			return false
		}
	}
	return true
}
