package hashstore

import (
	"cmp"
	"slices"
)

// Match is a population member within threshold of a query.
type Match[H Code] struct {
	Distance int
	Hash     H
}

// Result holds the matches of one query.
type Result[H Code] struct {
	Query   H
	Matches []Match[H]

	// Truncated reports that matches were dropped because a backend-side
	// result buffer was full. Only set by backends configured to truncate.
	Truncated bool
}

// NewResult returns a result for query with its matches sorted.
// A nil match list is replaced by an empty one.
func NewResult[H Code](query H, matches []Match[H]) Result[H] {
	if matches == nil {
		matches = []Match[H]{}
	}
	SortMatches(matches)
	return Result[H]{Query: query, Matches: matches}
}

// CompareMatches orders matches by distance, then by code.
func CompareMatches[H Code](a, b Match[H]) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.Hash, b.Hash)
}

// SortMatches sorts matches in place.
func SortMatches[H Code](matches []Match[H]) {
	slices.SortFunc(matches, CompareMatches[H])
}

// SortResults sorts results by query code. Results with equal queries keep
// their relative order.
func SortResults[H Code](results []Result[H]) {
	slices.SortStableFunc(results, func(a, b Result[H]) int {
		return cmp.Compare(a.Query, b.Query)
	})
}
