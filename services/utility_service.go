package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

// DefaultPreviewLength is the rune length of a locked section preview
const DefaultPreviewLength = 160

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slugRegex       = regexp.MustCompile(`[^a-z0-9]+`)
)

// UtilityService provides text extraction and normalization for section HTML
type UtilityService struct {
	serviceMetrics *shared.ServiceMetrics
	previewLength  int
}

// NewUtilityService creates a new utility service instance
func NewUtilityService(metrics *shared.ServiceMetrics) *UtilityService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics("Utility_Service")
	}
	return &UtilityService{
		serviceMetrics: metrics,
		previewLength:  DefaultPreviewLength,
	}
}

// NormalizeTextContent trims and collapses whitespace
func (s *UtilityService) NormalizeTextContent(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// ExtractPlainText returns the visible text of an HTML fragment. Script and
// style elements are dropped. Unparsable input is returned normalized as-is.
func (s *UtilityService) ExtractPlainText(bodyHTML string) string {
	start := time.Now()
	if strings.TrimSpace(bodyHTML) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "UtilityService",
			"error":     err,
		}).Debug("Failed to parse section HTML, using raw text")
		s.RecordOperation("extract_text_fallback", false, time.Since(start))
		return s.NormalizeTextContent(bodyHTML)
	}

	doc.Find("script, style, noscript").Remove()

	// block elements get a separator so words do not run together
	doc.Find("p, li, br, h1, h2, h3, h4, h5, h6, td, th, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	text := s.NormalizeTextContent(doc.Text())
	s.RecordOperation("extract_text", true, time.Since(start))
	return text
}

// Preview returns at most the configured number of runes of the section text,
// cut on a word boundary with an ellipsis when truncated.
func (s *UtilityService) Preview(bodyHTML string) string {
	return TruncateText(s.ExtractPlainText(bodyHTML), s.previewLength)
}

// WordCount counts words of the section's visible text
func (s *UtilityService) WordCount(bodyHTML string) int {
	return len(strings.Fields(s.ExtractPlainText(bodyHTML)))
}

// TruncateText shortens text to limit runes, preferring the last space
func TruncateText(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}

// GenerateSlug creates URL-friendly identifiers
func (s *UtilityService) GenerateSlug(text string) string {
	if text == "" {
		return ""
	}
	slug := slugRegex.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}

// GetServiceMetrics returns the current service metrics
func (s *UtilityService) GetServiceMetrics() *shared.ServiceMetrics {
	return s.serviceMetrics
}

// RecordOperation records a utility service operation with metrics tracking
func (s *UtilityService) RecordOperation(operationName string, success bool, processingTime time.Duration) {
	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequest(success, processingTime)
		s.serviceMetrics.IncrementCustomCounter(operationName)
	}
}
