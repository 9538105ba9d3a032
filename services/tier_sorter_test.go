package services

import (
	"encoding/json"
	"testing"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadingInt(t *testing.T) {
	cases := map[string]int{
		"1234":   1234,
		"  567":  567,
		"89P":    89,
		"12,345": 12,
		"P123":   0,
		"":       0,
		"-45":    0,
		"007":    7,
		"3.9":    3,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseLeadingInt(raw), "input %q", raw)
	}
	// overflow stops accumulating instead of wrapping
	assert.Positive(t, ParseLeadingInt("99999999999999999999999999"))
}

func TestParseOptionAcceptsNumbersAndStrings(t *testing.T) {
	body := `[
		{"institute":"NIT A","probability":"High","openingRank":1200,"closingRank":"4500"},
		{"institute":"NIT B","probability":"Low","openingRank":"78P","closingRank":null}
	]`
	var raw []models.RawPredictedOption
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	rows := ParseOptions(raw)
	require.Len(t, rows, 2)
	assert.Equal(t, 1200, rows[0].OpeningRankValue)
	assert.Equal(t, 4500, rows[0].ClosingRankValue)
	assert.Equal(t, 78, rows[1].OpeningRankValue)
	assert.Equal(t, 0, rows[1].ClosingRankValue)
}

func TestSortByClosingRankDescendingAndStable(t *testing.T) {
	rows := []models.PredictedOption{
		{Institute: "A", ClosingRankValue: 100},
		{Institute: "B", ClosingRankValue: 300},
		{Institute: "C", ClosingRankValue: 100},
		{Institute: "D", ClosingRankValue: 0},
		{Institute: "E", ClosingRankValue: 300},
	}

	sorted := SortByClosingRank(rows)

	names := make([]string, len(sorted))
	for i, r := range sorted {
		names[i] = r.Institute
	}
	assert.Equal(t, []string{"B", "E", "A", "C", "D"}, names)
	assert.Equal(t, "A", rows[0].Institute, "input must not be reordered")
}

// TestSortByClosingRankProperties checks ordering and stability over random rows
func TestSortByClosingRankProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-increasing closing rank, ties in input order", prop.ForAll(
		func(ranks []int) bool {
			rows := make([]models.PredictedOption, len(ranks))
			for i, r := range ranks {
				rows[i] = models.PredictedOption{ClosingRankValue: r, OpeningRankValue: i}
			}
			sorted := SortByClosingRank(rows)
			if len(sorted) != len(rows) {
				return false
			}
			for i := 1; i < len(sorted); i++ {
				prev, cur := sorted[i-1], sorted[i]
				if prev.ClosingRankValue < cur.ClosingRankValue {
					return false
				}
				// OpeningRankValue carries the input position
				if prev.ClosingRankValue == cur.ClosingRankValue && prev.OpeningRankValue > cur.OpeningRankValue {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 20)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSortTiersLeavesHighInUpstreamOrder(t *testing.T) {
	rows := []models.PredictedOption{
		{Institute: "H1", Probability: "High", ClosingRankValue: 10},
		{Institute: "H2", Probability: "High", ClosingRankValue: 90},
		{Institute: "M1", Probability: "Medium", ClosingRankValue: 10},
		{Institute: "M2", Probability: "Medium", ClosingRankValue: 90},
		{Institute: "X", Probability: "Unknown", ClosingRankValue: 5},
	}

	buckets := TierBuckets(rows, models.GenderModeAll)

	high := buckets.Items(models.TierHigh)
	require.Len(t, high, 2)
	assert.Equal(t, "H1", high[0].Institute)

	medium := buckets.Items(models.TierMedium)
	require.Len(t, medium, 2)
	assert.Equal(t, "M2", medium[0].Institute)

	assert.Len(t, buckets.Unclassified(), 1)
}
