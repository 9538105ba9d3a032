package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func tierRows(high, medium, low int) []models.PredictedOption {
	var rows []models.PredictedOption
	add := func(n int, tier string) {
		for i := 0; i < n; i++ {
			rows = append(rows, models.PredictedOption{Institute: tier, Probability: tier, ClosingRankValue: i})
		}
	}
	add(high, "High")
	add(medium, "Medium")
	add(low, "Low")
	return rows
}

func TestDeriveActiveTabEmptyPreviousFallsBack(t *testing.T) {
	buckets := Group(tierRows(2, 0, 3), models.TierTabs(), ClassifyOption)

	tab, ok := DeriveActiveTab(models.TierMedium, buckets)
	assert.True(t, ok)
	assert.Equal(t, models.TierHigh, tab)
}

func TestDeriveActiveTabKeepsNonEmptyPrevious(t *testing.T) {
	buckets := Group(tierRows(2, 0, 3), models.TierTabs(), ClassifyOption)

	tab, ok := DeriveActiveTab(models.TierLow, buckets)
	assert.True(t, ok)
	assert.Equal(t, models.TierLow, tab)
}

func TestDeriveActiveTabFirstNonEmptyInPriorityOrder(t *testing.T) {
	buckets := Group(tierRows(0, 1, 1), models.TierTabs(), ClassifyOption)

	tab, ok := DeriveActiveTab(models.TierHigh, buckets)
	assert.True(t, ok)
	assert.Equal(t, models.TierMedium, tab)
}

func TestDeriveActiveTabNoSelectionWhenAllEmpty(t *testing.T) {
	buckets := Group(tierRows(0, 0, 0), models.TierTabs(), ClassifyOption)

	tab, ok := DeriveActiveTab(models.TierHigh, buckets)
	assert.False(t, ok)
	assert.Equal(t, models.Tab(""), tab)
}

func TestDeriveActiveTabIgnoresForeignTab(t *testing.T) {
	buckets := Group(tierRows(0, 1, 0), models.TierTabs(), ClassifyOption)

	tab, ok := DeriveActiveTab(models.TabOverview, buckets)
	assert.True(t, ok)
	assert.Equal(t, models.TierMedium, tab)
}

// TestDeriveActiveTabAlwaysNonEmpty checks the correction rule over random tier sizes
func TestDeriveActiveTabAlwaysNonEmpty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("selection is non-empty whenever any tier is", prop.ForAll(
		func(high, medium, low, prev int) bool {
			buckets := Group(tierRows(high, medium, low), models.TierTabs(), ClassifyOption)
			previous := models.TierTabs()[prev]

			tab, ok := DeriveActiveTab(previous, buckets)
			if high+medium+low == 0 {
				return !ok
			}
			if !ok || buckets.Count(tab) == 0 {
				return false
			}
			// a non-empty previous tier is never overridden
			if buckets.Count(previous) > 0 {
				return tab == previous
			}
			return tab == buckets.Available()[0]
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSelectionStateSelectHonorsEmptyTab(t *testing.T) {
	buckets := Group(tierRows(2, 0, 3), models.TierTabs(), ClassifyOption)
	state := SelectionState{}.Regroup(buckets)
	assert.Equal(t, models.TierHigh, state.Active)

	state = state.Select(models.TierMedium)
	assert.True(t, state.Selected)
	assert.Equal(t, models.TierMedium, state.Active)

	// the next regroup corrects it again
	state = state.Regroup(buckets)
	assert.Equal(t, models.TierHigh, state.Active)
}

func TestViewStateStorePerUserAndPurge(t *testing.T) {
	store := NewViewStateStore()
	buckets := Group(tierRows(0, 1, 1), models.TierTabs(), ClassifyOption)

	store.Regroup("u1", "predict:all", buckets)
	store.Select("u2", "predict:all", models.TierLow)

	assert.Equal(t, models.TierMedium, store.Get("u1", "predict:all").Active)
	assert.Equal(t, models.TierLow, store.Get("u2", "predict:all").Active)
	assert.False(t, store.Get("u3", "predict:all").Selected)
	assert.Equal(t, 2, store.Size())

	assert.Equal(t, 0, store.PurgeOlderThan(time.Now().Add(-time.Hour)))
	assert.Equal(t, 2, store.PurgeOlderThan(time.Now().Add(time.Second)))
	assert.Equal(t, 0, store.Size())
}

func TestGenderFilter(t *testing.T) {
	rows := []models.PredictedOption{
		{Institute: "A", Gender: "Female-only (including Supernumerary)"},
		{Institute: "B", Gender: "Gender-Neutral"},
		{Institute: "C", Gender: "gender-neutral"},
	}

	assert.Len(t, FilterByGender(rows, models.GenderModeAll), 3)
	assert.Len(t, FilterByGender(rows, models.GenderModeFemaleOnly), 1)
	assert.Len(t, FilterByGender(rows, models.GenderModeGenderNeutral), 2)
	assert.Empty(t, FilterByGender(nil, models.GenderModeFemaleOnly))

	assert.Equal(t, models.GenderModeFemaleOnly, ParseGenderMode("Female-only"))
	assert.Equal(t, models.GenderModeGenderNeutral, ParseGenderMode("gender-neutral"))
	assert.Equal(t, models.GenderModeAll, ParseGenderMode("whatever"))

	assert.False(t, GenderFilterVisible("Male"))
	assert.True(t, GenderFilterVisible("Female"))
	assert.True(t, GenderFilterVisible(""))
}
