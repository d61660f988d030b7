package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/pkg/utils"
)

const (
	categoryMarker = "Category:"
	headlineMarker = "Headline:"

	// A sentence terminator further out than this is not treated as the end
	// of a headline.
	headlineSentenceSpan = 200
	headlineMaxLen       = 80
)

// The markers appear both plain and in the feed's markdown-bold form
// (**Category:** value).
var (
	categoryMarkerRe = regexp.MustCompile(`(?i)\*{0,2}category:\*{0,2}[ \t]*([A-Za-z0-9 &/()\-]+)`)
	headlineMarkerRe = regexp.MustCompile(`(?is)\*{0,2}headline:\*{0,2}[ \t]*(.*?)(?:\n[ \t]*\n|\n[ \t]*\*{0,2}[a-z][a-z &]*:|$)`)
	categoryLineRe   = regexp.MustCompile(`(?i)\*{0,2}category:\*{0,2}[ \t]*[A-Za-z0-9 &/()\-]*\n?`)
)

// Classifier derives category, headline and sentiment from free-text summaries
// and rewrites them into the canonical two-field header form.
type Classifier struct {
	rules Rules
}

func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules.withDefaults()}
}

// Classify is pure and idempotent: running it on already-structured output
// yields the same record.
func (c *Classifier) Classify(p Partial) Partial {
	summary := p.Summary
	if strings.TrimSpace(summary) == "" {
		if p.Sentiment == "" {
			p.Sentiment = domain.SentimentNeutral
		}
		if p.Category == "" {
			p.Category = DefaultCategory
		}
		return p
	}

	p.Category = c.refineCategory(p.Category, summary)

	headline := extractHeadline(summary)

	hasCategory := categoryMarkerRe.MatchString(summary)
	hasHeadline := headlineMarkerRe.MatchString(summary)
	if hasCategory && hasHeadline {
		// Already structured: keep the header's category value in sync with
		// the refined one instead of wrapping again.
		synced := syncCategoryValue(summary, p.Category)
		if p.DetailedContent == summary {
			p.DetailedContent = synced
		}
		p.Summary = synced
	} else {
		rewritten := fmt.Sprintf("%s %s\n%s %s\n\n%s", categoryMarker, p.Category, headlineMarker, headline, summary)
		if p.DetailedContent == summary {
			p.DetailedContent = rewritten
		}
		p.Summary = rewritten
	}

	p.Sentiment = c.deriveSentiment(p.Summary, p.Sentiment)
	return p
}

// refineCategory takes an explicit marker value when one exists, otherwise
// applies the keyword rules in precedence order. A marker carrying the
// generic default is treated as absent.
func (c *Classifier) refineCategory(current, summary string) string {
	if m := categoryMarkerRe.FindStringSubmatch(summary); m != nil {
		value := strings.TrimSpace(m[1])
		if value != "" && !strings.EqualFold(value, DefaultCategory) {
			return value
		}
	}

	if current != "" && !strings.EqualFold(current, DefaultCategory) {
		return current
	}

	lower := strings.ToLower(summary)
	for _, rule := range c.rules.Categories {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Name
			}
		}
	}

	if current == "" {
		return DefaultCategory
	}
	return current
}

// extractHeadline uses the explicit marker when present (multi-line value,
// newlines collapsed), else the first sentence of the de-markered summary,
// else a hard truncation.
func extractHeadline(summary string) string {
	if m := headlineMarkerRe.FindStringSubmatch(summary); m != nil {
		if h := utils.CollapseWhitespace(m[1]); h != "" {
			return h
		}
	}

	text := strings.TrimSpace(categoryLineRe.ReplaceAllString(summary, ""))
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 && idx <= headlineSentenceSpan {
		return utils.CollapseWhitespace(text[:idx+1])
	}
	text = utils.CollapseWhitespace(text)
	if truncated := utils.TruncateRunes(text, headlineMaxLen); truncated != text {
		return truncated + "..."
	}
	return text
}

// syncCategoryValue replaces the value of the first category marker without
// touching later occurrences in the body.
func syncCategoryValue(summary, category string) string {
	m := categoryMarkerRe.FindStringSubmatchIndex(summary)
	if m == nil {
		return summary
	}
	existing := strings.TrimSpace(summary[m[2]:m[3]])
	if existing == category {
		return summary
	}
	return summary[:m[2]] + category + summary[m[3]:]
}

// deriveSentiment scans for positive keywords first; the positive class wins
// when both are present.
func (c *Classifier) deriveSentiment(summary string, current domain.Sentiment) domain.Sentiment {
	lower := strings.ToLower(summary)
	for _, kw := range c.rules.Positive {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return domain.SentimentPositive
		}
	}
	for _, kw := range c.rules.Negative {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return domain.SentimentNegative
		}
	}
	if current != "" {
		return current
	}
	return domain.SentimentNeutral
}
