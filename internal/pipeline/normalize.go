package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/filingradar/filingradar/internal/domain"
)

// Upstream correlation id variants, in priority order.
var correlationKeys = []string{"corp_id", "id", "announcement_id", "dedup_id"}

// Layouts accepted for source timestamps, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
}

const displayDateLayout = "02 Jan 2006, 3:04 PM"

// ParseDate parses a source timestamp in any accepted layout. The second
// return reports whether the value was usable for ordering.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IdentityKey resolves the deduplication key for a payload: an upstream
// correlation id when one exists, else a synthesized fallback. The fallback
// only guarantees weak uniqueness (same-millisecond arrivals from different
// sequences can collide); the fingerprint check in DedupCache covers the
// same-event case.
func IdentityKey(payload domain.RawPayload, seq int64) string {
	if id := payload.FirstString(correlationKeys...); id != "" {
		return id
	}
	return fmt.Sprintf("seq-%d-%d", seq, time.Now().UnixMilli())
}

// Normalize assembles the canonical record from the raw payload and the
// classified partial.
func Normalize(payload domain.RawPayload, p Partial, seq int64) domain.Announcement {
	rec := domain.Announcement{
		IdentityKey:     IdentityKey(payload, seq),
		Company:         p.Company,
		Ticker:          p.Ticker,
		ISIN:            p.ISIN,
		Category:        p.Category,
		Sentiment:       p.Sentiment,
		RawDate:         p.RawDate,
		Summary:         p.Summary,
		DetailedContent: p.DetailedContent,
		AttachmentURL:   p.AttachmentURL,
	}

	if rec.Sentiment == "" {
		rec.Sentiment = domain.SentimentNeutral
	}
	if rec.DetailedContent == "" {
		rec.DetailedContent = rec.Summary
	}

	if t, ok := ParseDate(rec.RawDate); ok {
		rec.DisplayDate = t.Format(displayDateLayout)
	} else {
		slog.Debug("unparseable announcement date, keeping raw form", "date", rec.RawDate, "company", rec.Company)
		rec.DisplayDate = rec.RawDate
	}

	return rec
}
