// Package search filters an already loaded conversation list by title.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dhamidi/convbrowse/conversation"
)

// titles adapts a summary list to fuzzy.Source.
type titles []conversation.Summary

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Result is a summary that matched a query, with the matched title runes.
type Result struct {
	Summary conversation.Summary
	Matched []int
	Score   int
}

// Titles returns the items whose title fuzzy-matches query, best match
// first. An empty query returns every item in its original order.
func Titles(items []conversation.Summary, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Result, len(items))
		for i, s := range items {
			out[i] = Result{Summary: s}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, titles(items))
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Summary: items[m.Index], Matched: m.MatchedIndexes, Score: m.Score}
	}
	return out
}

// Summaries is Titles without the match details.
func Summaries(items []conversation.Summary, query string) []conversation.Summary {
	results := Titles(items, query)
	out := make([]conversation.Summary, len(results))
	for i, r := range results {
		out[i] = r.Summary
	}
	return out
}
