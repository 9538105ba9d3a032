package services

import (
	"strings"

	"github.com/fenilmodi00/counsel-backend/models"
)

// ParseGenderMode maps a UI value onto a mode; unknown values mean All
func ParseGenderMode(raw string) models.GenderMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "female-only", "female", "female_only":
		return models.GenderModeFemaleOnly
	case "gender-neutral", "neutral", "gender_neutral":
		return models.GenderModeGenderNeutral
	default:
		return models.GenderModeAll
	}
}

// FilterByGender keeps rows whose gender field matches mode. It runs before
// tier grouping and sorting.
func FilterByGender(items []models.PredictedOption, mode models.GenderMode) []models.PredictedOption {
	var needle string
	switch mode {
	case models.GenderModeFemaleOnly:
		needle = "female"
	case models.GenderModeGenderNeutral:
		needle = "neutral"
	default:
		out := make([]models.PredictedOption, len(items))
		copy(out, items)
		return out
	}

	out := make([]models.PredictedOption, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Gender), needle) {
			out = append(out, item)
		}
	}
	return out
}

// GenderFilterVisible reports whether the gender toggle is offered. It is
// hidden for male users.
func GenderFilterVisible(userGender string) bool {
	return !strings.EqualFold(strings.TrimSpace(userGender), "male")
}
