package services

import (
	"strings"

	"github.com/fenilmodi00/counsel-backend/models"
)

// Unclassified is returned for labels matching no vocabulary member
const Unclassified = models.Unclassified

// Classify maps a raw label onto a vocabulary member by trimmed, case-insensitive
// exact match. Substrings and near misses are Unclassified.
func Classify(rawLabel string, vocabulary []models.Tab) models.Tab {
	label := normalizeLabel(rawLabel)
	if label == "" {
		return Unclassified
	}
	for _, tab := range vocabulary {
		if normalizeLabel(string(tab)) == label {
			return tab
		}
	}
	return Unclassified
}

// ClassifySection classifies an exam content section by its title
func ClassifySection(section models.ContentSection) models.Tab {
	return Classify(section.Title, models.ExamTabs())
}

// ClassifyOption classifies a predictor row by its probability label
func ClassifyOption(option models.PredictedOption) models.Tab {
	return Classify(option.Probability, models.TierTabs())
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
