package services

import (
	"math"
	"sort"
	"strings"

	"github.com/fenilmodi00/counsel-backend/models"
)

// ParseLeadingInt parses the leading decimal digits of s, after optional
// whitespace. Anything without leading digits is 0.
func ParseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	value := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if value > (math.MaxInt-9)/10 {
			break
		}
		value = value*10 + int(r-'0')
	}
	return value
}

// ParseOption converts a raw predictor row into its typed form
func ParseOption(raw models.RawPredictedOption) models.PredictedOption {
	return models.PredictedOption{
		Institute:        strings.TrimSpace(string(raw.Institute)),
		Branch:           strings.TrimSpace(string(raw.Branch)),
		Quota:            strings.TrimSpace(string(raw.Quota)),
		SeatType:         strings.TrimSpace(string(raw.SeatType)),
		Gender:           strings.TrimSpace(string(raw.Gender)),
		OpeningRank:      string(raw.OpeningRank),
		ClosingRank:      string(raw.ClosingRank),
		Probability:      strings.TrimSpace(string(raw.Probability)),
		OpeningRankValue: ParseLeadingInt(string(raw.OpeningRank)),
		ClosingRankValue: ParseLeadingInt(string(raw.ClosingRank)),
	}
}

// ParseOptions converts a raw predictor list, never returning nil
func ParseOptions(raw []models.RawPredictedOption) []models.PredictedOption {
	out := make([]models.PredictedOption, 0, len(raw))
	for _, r := range raw {
		out = append(out, ParseOption(r))
	}
	return out
}

// ParsePredictionResponse converts the whole predictor response
func ParsePredictionResponse(raw models.RawPredictionResponse) models.PredictionResponse {
	return models.PredictionResponse{
		Predictions:          ParseOptions(raw.Predictions),
		HomeStatePredictions: ParseOptions(raw.HomeStatePredictions),
		CalculatedRank:       raw.CalculatedRank,
	}
}

// SortByClosingRank returns a copy of items ordered by closing rank, highest
// first. Equal ranks keep their input order.
func SortByClosingRank(items []models.PredictedOption) []models.PredictedOption {
	sorted := make([]models.PredictedOption, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClosingRankValue > sorted[j].ClosingRankValue
	})
	return sorted
}

// sortTiers orders the Medium and Low tiers; High keeps upstream order
func sortTiers(buckets Buckets[models.PredictedOption]) Buckets[models.PredictedOption] {
	return buckets.Map(func(tab models.Tab, items []models.PredictedOption) []models.PredictedOption {
		if tab == models.TierMedium || tab == models.TierLow {
			return SortByClosingRank(items)
		}
		return items
	})
}
