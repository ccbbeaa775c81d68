package search

import "sort"

// SortResults orders results by matched token count (descending), summed
// score (descending), keyword word count (ascending) and finally index
// position (ascending), so equal inputs always rank the same way.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Matched != b.Matched {
			return a.Matched > b.Matched
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Words != b.Words {
			return a.Words < b.Words
		}
		return a.Index < b.Index
	})
}
