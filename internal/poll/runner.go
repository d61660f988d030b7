package poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/filingradar/filingradar/internal/domain"
)

const DefaultInterval = 60 * time.Second

// Ingestor receives the outcome of each poll cycle.
type Ingestor interface {
	IngestPolled(payloads []domain.RawPayload)
	PollFailed(err error)
}

// Runner drives the periodic REST retrieval loop, feeding each batch into an
// Ingestor. It polls once immediately on Run, then on every interval tick.
type Runner struct {
	client   *Client
	ingestor Ingestor
	interval time.Duration
}

func NewRunner(client *Client, ingestor Ingestor, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		client:   client,
		ingestor: ingestor,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.poll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

func (r *Runner) poll(ctx context.Context) {
	today := time.Now().Format("2006-01-02")
	payloads, err := r.client.Fetch(ctx, Query{StartDate: today, EndDate: today})
	if err != nil {
		slog.Error("poll cycle failed", "error", err)
		r.ingestor.PollFailed(err)
		return
	}

	slog.Info("poll cycle complete", "filings", len(payloads))
	r.ingestor.IngestPolled(payloads)
}
