// Package es mirrors archived announcements into an Elasticsearch index for
// full-text search across summaries and filings content.
package es

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/filingradar/filingradar/internal/domain"
)

type Config struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

type Storer struct {
	typedClient *elasticsearch.TypedClient
	indexName   string
}

// Document is the index shape for one announcement.
type Document struct {
	IdentityKey     string    `json:"identity_key"`
	Company         string    `json:"company"`
	Ticker          string    `json:"ticker"`
	ISIN            string    `json:"isin"`
	Category        string    `json:"category"`
	Sentiment       string    `json:"sentiment"`
	RawDate         string    `json:"raw_date"`
	Summary         string    `json:"summary"`
	DetailedContent string    `json:"detailed_content"`
	AttachmentURL   string    `json:"attachment_url"`
	ReceivedAt      int64     `json:"received_at"`
	IndexedAt       time.Time `json:"indexed_at"`
}

func NewStorer(ctx context.Context, config Config) (*Storer, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewTypedClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	storer := &Storer{
		typedClient: client,
		indexName:   config.IndexName,
	}
	if err := storer.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return storer, nil
}

// Index writes one announcement, keyed by its identity key so replays
// overwrite rather than duplicate.
func (e *Storer) Index(ctx context.Context, a domain.Announcement) error {
	doc := Document{
		IdentityKey:     a.IdentityKey,
		Company:         a.Company,
		Ticker:          a.Ticker,
		ISIN:            a.ISIN,
		Category:        a.Category,
		Sentiment:       string(a.Sentiment),
		RawDate:         a.RawDate,
		Summary:         a.Summary,
		DetailedContent: a.DetailedContent,
		AttachmentURL:   a.AttachmentURL,
		ReceivedAt:      a.ReceivedAt,
		IndexedAt:       time.Now(),
	}

	res, err := e.typedClient.Index(e.indexName).Id(doc.IdentityKey).Document(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index announcement: %w", err)
	}

	slog.Debug("announcement indexed", "identity_key", doc.IdentityKey, "index", e.indexName, "result", res.Result)
	return nil
}

func (e *Storer) EnsureIndex(ctx context.Context) error {
	existsRes, err := e.typedClient.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if existsRes {
		slog.Info("index already exists", "index", e.indexName)
		return nil
	}

	mappings := types.TypeMapping{
		Properties: map[string]types.Property{
			"identity_key":     types.NewKeywordProperty(),
			"company":          textWithKeyword(),
			"ticker":           types.NewKeywordProperty(),
			"isin":             types.NewKeywordProperty(),
			"category":         types.NewKeywordProperty(),
			"sentiment":        types.NewKeywordProperty(),
			"raw_date":         types.NewKeywordProperty(),
			"summary":          textWithKeyword(),
			"detailed_content": types.NewTextProperty(),
			"attachment_url":   types.NewKeywordProperty(),
			"received_at":      types.NewLongNumberProperty(),
			"indexed_at":       types.NewDateProperty(),
		},
	}

	createRes, err := e.typedClient.Indices.Create(e.indexName).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("index created", "index", e.indexName)
	return nil
}

func textWithKeyword() types.Property {
	textProp := types.NewTextProperty()
	textProp.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}
	return textProp
}
