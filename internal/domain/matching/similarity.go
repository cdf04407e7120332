package matching

import "github.com/agext/levenshtein"

// FuzzyThreshold is the minimum string-similarity ratio for two skill names
// to count as a fuzzy match. The exact ratio algorithm is not load-bearing,
// only this threshold is.
const FuzzyThreshold = 0.8

func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	return levenshtein.Similarity(a, b, nil)
}
