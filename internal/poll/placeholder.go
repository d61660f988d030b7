package poll

import (
	"time"

	"github.com/filingradar/filingradar/internal/domain"
)

// PlaceholderFilings returns a small synthetic batch so the feed stays
// populated when every upstream endpoint is down. Timestamps are relative to
// now so the records rank plausibly against real data once it returns.
func PlaceholderFilings() []domain.RawPayload {
	now := time.Now()
	stamp := func(age time.Duration) string {
		return now.Add(-age).Format("2006-01-02T15:04:05")
	}

	return []domain.RawPayload{
		{
			"corp_id":      "placeholder-1",
			"companyname":  "Sample Industries Ltd",
			"symbol":       "SAMPLE",
			"category":     "Financial Results",
			"summary":      "**Category:** Financial Results\n**Headline:** Sample Industries reports quarterly results\n\nPlaceholder filing shown while the upstream feed is unavailable.",
			"date":         stamp(0),
		},
		{
			"corp_id":      "placeholder-2",
			"companyname":  "Demo Corp Ltd",
			"symbol":       "DEMO",
			"category":     "Dividend",
			"summary":      "**Category:** Dividend\n**Headline:** Demo Corp declares interim dividend\n\nPlaceholder filing shown while the upstream feed is unavailable.",
			"date":         stamp(1 * time.Hour),
		},
		{
			"corp_id":      "placeholder-3",
			"companyname":  "Example Enterprises Ltd",
			"symbol":       "EXMPL",
			"category":     "Board Meeting",
			"summary":      "**Category:** Board Meeting\n**Headline:** Example Enterprises schedules board meeting\n\nPlaceholder filing shown while the upstream feed is unavailable.",
			"date":         stamp(2 * time.Hour),
		},
	}
}
