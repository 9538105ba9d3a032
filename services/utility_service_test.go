package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestExtractPlainText(t *testing.T) {
	service := NewUtilityService(nil)

	html := `<h2>Eligibility</h2><p>Class 12 pass</p><script>track()</script><ul><li>PCM</li><li>75%</li></ul>`
	assert.Equal(t, "Eligibility Class 12 pass PCM 75%", service.ExtractPlainText(html))
	assert.Equal(t, 6, service.WordCount(html))
	assert.Equal(t, "", service.ExtractPlainText("   "))
	assert.Equal(t, "plain text", service.ExtractPlainText("plain   text"))
}

func TestPreviewTruncatesOnWordBoundary(t *testing.T) {
	service := NewUtilityService(nil)
	body := "<p>" + strings.Repeat("counselling ", 40) + "</p>"

	preview := service.Preview(body)
	assert.True(t, strings.HasSuffix(preview, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(preview), DefaultPreviewLength+1)
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(preview, "…"), "counselling"))

	assert.Equal(t, "short", service.Preview("<p>short</p>"))
}

func TestTruncateTextProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("never longer than limit plus ellipsis", prop.ForAll(
		func(text string, limit int) bool {
			out := TruncateText(text, limit)
			if utf8.RuneCountInString(text) <= limit {
				return out == text
			}
			return utf8.RuneCountInString(out) <= limit+1
		},
		gen.AnyString(),
		gen.IntRange(1, 80),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestGenerateSlug(t *testing.T) {
	service := NewUtilityService(nil)
	assert.Equal(t, "jee-main-2026", service.GenerateSlug("JEE Main (2026)"))
	assert.Equal(t, "", service.GenerateSlug(""))
}
