package services

import (
	"testing"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassifyExactMatch(t *testing.T) {
	cases := []struct {
		raw  string
		want models.Tab
	}{
		{"Overview", models.TabOverview},
		{"  syllabus ", models.TabSyllabus},
		{"FEES", models.TabFees},
		{"Important Dates", Unclassified},
		{"Exam Pattern", Unclassified},
		{"Overviews", Unclassified},
		{"", Unclassified},
		{"   ", Unclassified},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.raw, models.ExamTabs()), "label %q", tc.raw)
	}
}

func TestClassifyTiers(t *testing.T) {
	assert.Equal(t, models.TierHigh, Classify("high", models.TierTabs()))
	assert.Equal(t, models.TierMedium, Classify(" Medium", models.TierTabs()))
	assert.Equal(t, Unclassified, Classify("Very High", models.TierTabs()))
	assert.Equal(t, Unclassified, Classify("Overview", models.TierTabs()))
}

// TestClassifyTotalityAndIdempotence checks that every label lands on a
// vocabulary member or Unclassified, and that classifying the result again is
// stable.
func TestClassifyTotalityAndIdempotence(t *testing.T) {
	properties := gopter.NewProperties(nil)
	vocab := models.ExamTabs()

	properties.Property("result is in vocabulary or Unclassified", prop.ForAll(
		func(raw string) bool {
			tab := Classify(raw, vocab)
			return tab == Unclassified || inVocabulary(tab, vocab)
		},
		gen.AnyString(),
	))

	properties.Property("classify(classify(x)) == classify(x)", prop.ForAll(
		func(idx int) bool {
			labels := append(tabStrings(vocab), "Dates & Deadlines", "", "misc")
			raw := " " + labels[idx%len(labels)] + " "
			first := Classify(raw, vocab)
			if first == Unclassified {
				return Classify(raw, vocab) == Unclassified
			}
			return Classify(string(first), vocab) == first
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func tabStrings(tabs []models.Tab) []string {
	out := make([]string, len(tabs))
	for i, tab := range tabs {
		out[i] = string(tab)
	}
	return out
}
