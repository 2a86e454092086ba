package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it into terms on every rune that is
// neither a letter nor a digit. Splitting is rune-based, so non-ASCII
// scripts tokenize the same way as Latin text.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// termFrequencies counts occurrences of each term in a token stream
func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
