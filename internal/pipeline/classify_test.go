package pipeline

import (
	"testing"

	"github.com/filingradar/filingradar/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

func TestClassify_Idempotent(t *testing.T) {
	c := newTestClassifier()

	inputs := []Partial{
		{Company: "Acme", Category: "Other", Summary: "Acme announces interim dividend of Rs 2 per share.", DetailedContent: "Acme announces interim dividend of Rs 2 per share."},
		{Company: "Acme", Category: "Financial Results", Summary: "**Category:** Financial Results\n**Headline:** Q1 results\n\nRevenue grew 15%."},
		{Company: "Acme", Summary: ""},
		{Company: "Acme", Summary: "Merger with XYZ Corp approved by board"},
	}

	for _, p := range inputs {
		once := c.Classify(p)
		twice := c.Classify(once)
		assert.Equal(t, once, twice, "classification must be stable across re-runs")
	}
}

func TestClassify_CategoryFromMarker(t *testing.T) {
	c := newTestClassifier()

	p := c.Classify(Partial{
		Category: "Other",
		Summary:  "**Category:** Credit Rating\n**Headline:** Rating reaffirmed\n\nCRISIL reaffirmed the rating.",
	})
	assert.Equal(t, "Credit Rating", p.Category)
}

func TestClassify_KeywordPrecedence(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{"dividend beats financial terms", "Dividend declared alongside quarterly revenue update", "Dividend"},
		{"financial results", "Unaudited quarterly result for the period", "Financial Results"},
		{"mergers", "Scheme of arrangement for amalgamation filed", "Mergers & Acquisitions"},
		{"board", "Outcome of board meeting held today", "Board Meeting"},
		{"agm", "Notice of annual general meeting", "AGM"},
		{"no match leaves default", "Routine disclosure under regulation 30", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.Classify(Partial{Category: "Other", Summary: tt.summary})
			assert.Equal(t, tt.want, p.Category)
		})
	}
}

func TestClassify_ExplicitCategoryWins(t *testing.T) {
	c := newTestClassifier()

	// A specific upstream category is never overwritten by keyword guesses.
	p := c.Classify(Partial{Category: "Credit Rating", Summary: "Dividend mentioned in passing."})
	assert.Equal(t, "Credit Rating", p.Category)
}

func TestClassify_DividendScenario(t *testing.T) {
	// Synthesized summary from a payload with HEADLINE, empty CATEGORYNAME
	// and a MORE body; the generic header value must not block refinement.
	c := newTestClassifier()

	partial := Extract(domain.RawPayload{
		"HEADLINE":     "ABC Ltd declares dividend of Rs 5",
		"CATEGORYNAME": "",
		"MORE":         "Board approved dividend.",
	})
	p := c.Classify(partial)

	assert.Equal(t, "Dividend", p.Category)
	assert.Equal(t, domain.SentimentNeutral, p.Sentiment)
	assert.Contains(t, p.Summary, "Category: Dividend")
}

func TestClassify_HeadlineFromMarkerCollapsesNewlines(t *testing.T) {
	c := newTestClassifier()

	// Headline marker without a category marker: the rewrite prepends a full
	// header using the marker's multi-line value, newlines collapsed.
	p := c.Classify(Partial{
		Summary: "Headline: New plant\nin Pune\n\nCapacity doubles.",
	})
	assert.Contains(t, p.Summary, "Headline: New plant in Pune\n")
}

func TestClassify_HeadlineFirstSentence(t *testing.T) {
	c := newTestClassifier()

	p := c.Classify(Partial{
		Summary: "Acme wins a large export order. Shipments begin next quarter.",
	})
	assert.Contains(t, p.Summary, "Headline: Acme wins a large export order.")
}

func TestClassify_HeadlineTruncation(t *testing.T) {
	c := newTestClassifier()

	long := "a very long disclosure without any sentence terminator that keeps going and going until well past the cutoff point"
	p := c.Classify(Partial{Summary: long})

	head := extractHeadline(long)
	assert.Len(t, []rune(head), headlineMaxLen+3)
	assert.Contains(t, head, "...")
	assert.Contains(t, p.Summary, "Headline: "+head)
}

func TestClassify_RestructuresOnlyOnce(t *testing.T) {
	c := newTestClassifier()

	p := c.Classify(Partial{Summary: "Plain unstructured text about a merger."})
	assert.Contains(t, p.Summary, "Category: Mergers & Acquisitions\nHeadline: ")

	again := c.Classify(p)
	// No double-wrapping: exactly one headline marker.
	assert.Equal(t, p.Summary, again.Summary)
}

func TestClassify_DetailedContentSync(t *testing.T) {
	c := newTestClassifier()

	synced := c.Classify(Partial{
		Summary:         "Dividend of Rs 3 declared.",
		DetailedContent: "Dividend of Rs 3 declared.",
	})
	assert.Equal(t, synced.Summary, synced.DetailedContent)

	independent := c.Classify(Partial{
		Summary:         "Dividend of Rs 3 declared.",
		DetailedContent: "A different long-form body.",
	})
	assert.Equal(t, "A different long-form body.", independent.DetailedContent)
}

func TestClassify_Sentiment(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name    string
		summary string
		want    domain.Sentiment
	}{
		{"positive", "Revenue growth of 20% reported", domain.SentimentPositive},
		{"negative", "Net loss widened this quarter", domain.SentimentNegative},
		{"positive wins over negative", "Profit up despite one-time loss", domain.SentimentPositive},
		{"neutral", "Intimation of book closure dates", domain.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.Classify(Partial{Summary: tt.summary})
			assert.Equal(t, tt.want, p.Sentiment)
		})
	}
}

func TestClassify_EmptySummary(t *testing.T) {
	c := newTestClassifier()

	p := c.Classify(Partial{})
	assert.Empty(t, p.Summary)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.Equal(t, domain.SentimentNeutral, p.Sentiment)
}
