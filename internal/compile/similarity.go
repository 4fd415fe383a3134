// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import "strings"

// Similarity returns a bag-of-words overlap between two texts: shared word
// count divided by the larger word-set size. Intentionally simple — this is
// a near-duplicate filter, not a relevance model.
func Similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}

	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}
	return float64(common) / float64(larger)
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
