package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhamidi/convbrowse/conversation"
)

func items() []conversation.Summary {
	return []conversation.Summary{
		{ID: "1", Title: "Refactor the payment service"},
		{ID: "2", Title: "Weekend hiking plans"},
		{ID: "3", Title: "Postgres index tuning"},
		{ID: "4", Title: conversation.UntitledTitle},
	}
}

func idsOf(items []conversation.Summary) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestEmptyQueryReturnsEverything(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4"}, idsOf(Summaries(items(), "  ")))
}

func TestFuzzyTitleMatch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"hiking", []string{"2"}},
		{"pgidx", []string{"3"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, idsOf(Summaries(items(), tt.query)))
		})
	}
}

func TestMatchedIndexes(t *testing.T) {
	results := Titles(items(), "week")
	if assert.Len(t, results, 1) {
		assert.Equal(t, []int{0, 1, 2, 3}, results[0].Matched)
	}
}
