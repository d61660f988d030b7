// Package pg archives reconciled announcements to Postgres and serves the
// company lookup queries behind the search endpoint.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/filingradar/filingradar/internal/domain"
)

type Storer struct {
	pool *ConnectionPool
}

func NewStorer(pool *ConnectionPool) *Storer {
	return &Storer{pool: pool}
}

// SaveAnnouncement archives one record. Re-archiving the same identity key is
// a silent no-op, so replayed records cost nothing.
func (s *Storer) SaveAnnouncement(ctx context.Context, a domain.Announcement) error {
	cmd := `
        INSERT INTO corporate_filings (
            id, identity_key, company, ticker, isin, category, sentiment,
            raw_date, display_date, summary, detailed_content, attachment_url,
            received_at, archived_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (identity_key) DO NOTHING;
    `
	_, err := s.pool.conn.Exec(
		ctx,
		cmd,
		uuid.New(),
		a.IdentityKey,
		a.Company,
		a.Ticker,
		a.ISIN,
		a.Category,
		string(a.Sentiment),
		a.RawDate,
		a.DisplayDate,
		a.Summary,
		a.DetailedContent,
		a.AttachmentURL,
		a.ReceivedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive announcement %s: %w", a.IdentityKey, err)
	}
	return nil
}

// SearchCompanies matches the query against company name, ticker and ISIN.
func (s *Storer) SearchCompanies(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	if limit <= 0 {
		limit = 20
	}

	cmd := `
        SELECT DISTINCT company, ticker, isin
        FROM corporate_filings
        WHERE company ILIKE $1 OR ticker ILIKE $1 OR isin ILIKE $1
        ORDER BY company
        LIMIT $2;
    `
	rows, err := s.pool.conn.Query(ctx, cmd, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.Name, &c.Ticker, &c.ISIN); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company rows: %w", err)
	}
	return companies, nil
}
