package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen drops fragments too short to carry meaning on their own.
const minTokenLen = 3

// stopWords are dropped during tokenization: common English filler
// plus boilerplate that appears in nearly every channel description
// and would otherwise inflate all pairwise scores.
var stopWords = tokenSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
	"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
	"how", "man", "new", "now", "old", "see", "two", "way", "who", "its",
	"did", "with", "they", "this", "have", "from", "that", "what", "been",
	"were", "when", "your", "said", "will", "each", "about", "which",
	"their", "there", "would", "could", "should", "than", "then", "them",
	"these", "those", "where", "while", "because", "here", "more", "most",
	"some", "such", "into", "over", "after", "before", "between", "both",
	"video", "videos", "channel", "subscribe", "watch", "official",
)

func tokenSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tokenize lowercases text and splits it into a token set. Letters,
// digits, and the characters "+", "#", "." survive inside tokens so
// names like c++, c#, and node.js stay intact; leading and trailing
// dots are stripped so sentence punctuation does not fork tokens.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		token := strings.Trim(b.String(), ".")
		b.Reset()
		if utf8.RuneCountInString(token) < minTokenLen {
			return
		}
		if _, stop := stopWords[token]; stop {
			return
		}
		tokens[token] = struct{}{}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// jaccard returns the intersection-over-union of two sets, or 0 when
// either set is empty. Neutral handling of genuinely absent signals is
// the scorer's job.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	shared := 0
	for token := range small {
		if _, ok := large[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
