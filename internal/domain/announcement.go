package domain

import "strconv"

// RawPayload is a schema-varying announcement as delivered by the polling
// endpoint or the live channel. Historical feeds use different key casings and
// names for the same logical field, so lookups go through FirstString.
type RawPayload map[string]any

// FirstString returns the first non-empty string value among the given keys.
// Numeric values are formatted, since some feeds deliver scrip codes and
// correlation ids as JSON numbers.
func (p RawPayload) FirstString(keys ...string) string {
	for _, key := range keys {
		v, ok := p[key]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case int:
			return strconv.Itoa(s)
		case int64:
			return strconv.FormatInt(s, 10)
		case bool:
			// booleans are never a usable field value
		}
	}
	return ""
}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Announcement is the canonical record produced by the reconciliation
// pipeline. IdentityKey is unique within any published live set.
type Announcement struct {
	IdentityKey string `json:"identity_key"`

	Company string `json:"companyname"`
	Ticker  string `json:"symbol,omitempty"`
	ISIN    string `json:"isin,omitempty"`

	Category  string    `json:"category"`
	Sentiment Sentiment `json:"sentiment"`

	// RawDate is the source timestamp and drives ordering. DisplayDate is a
	// presentation form only and must never be used for sorting.
	RawDate     string `json:"date"`
	DisplayDate string `json:"display_date,omitempty"`

	Summary         string `json:"summary"`
	DetailedContent string `json:"detailed_content,omitempty"`
	AttachmentURL   string `json:"attachment_url,omitempty"`

	// ReceivedAt is the ingestion wall clock in unix milliseconds, set only
	// for push-delivered records. It sorts ahead of RawDate when present.
	ReceivedAt int64 `json:"received_at,omitempty"`

	// IsNew marks records delivered over the live channel this session.
	IsNew bool `json:"is_new,omitempty"`
}

// Company is a directory entry used by company search.
type Company struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker,omitempty"`
	ISIN   string `json:"isin,omitempty"`
}
