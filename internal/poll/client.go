// Package poll implements the REST retrieval path for corporate filings: a
// primary endpoint with a hard request timeout, a single fallback attempt,
// and the placeholder set used when both fail.
package poll

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/filingradar/filingradar/internal/domain"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	// BaseURL is the primary filings endpoint, e.g.
	// https://api.example.com/api. The client appends /corporate_filings.
	BaseURL     string
	FallbackURL string
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Query narrows a filings fetch. Zero values are omitted from the request.
type Query struct {
	StartDate string
	EndDate   string
	Category  string
}

// Fetch retrieves a batch of raw filings. On any primary failure the fallback
// endpoint is tried once before giving up.
func (c *Client) Fetch(ctx context.Context, q Query) ([]domain.RawPayload, error) {
	payloads, err := c.fetchFrom(ctx, c.cfg.BaseURL, q)
	if err == nil {
		return payloads, nil
	}

	if c.cfg.FallbackURL == "" {
		return nil, err
	}

	slog.Warn("filings fetch failed, trying fallback endpoint", "error", err)
	payloads, fallbackErr := c.fetchFrom(ctx, c.cfg.FallbackURL, q)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary endpoint failed (%v); fallback failed: %w", err, fallbackErr)
	}
	return payloads, nil
}

func (c *Client) fetchFrom(ctx context.Context, baseURL string, q Query) ([]domain.RawPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(baseURL, "/") + "/corporate_filings"
	params := url.Values{}
	if q.StartDate != "" {
		params.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("end_date", q.EndDate)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build filings request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("filings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("filings endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read filings response: %w", err)
	}

	return decodeFilings(body)
}

// decodeFilings accepts both response shapes the backend has shipped over
// time: an object with a filings array, and a bare array.
func decodeFilings(body []byte) ([]domain.RawPayload, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var payloads []domain.RawPayload
		if err := json.Unmarshal(body, &payloads); err != nil {
			return nil, fmt.Errorf("failed to decode filings array: %w", err)
		}
		return payloads, nil
	}

	var wrapped struct {
		Filings []domain.RawPayload `json:"filings"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode filings response: %w", err)
	}
	return wrapped.Filings, nil
}
