package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/filingradar/filingradar/internal/api/router"
	"github.com/filingradar/filingradar/internal/api/server"
	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/internal/live"
	"github.com/filingradar/filingradar/internal/pipeline"
	"github.com/filingradar/filingradar/internal/poll"
	"github.com/filingradar/filingradar/internal/storage/es"
	"github.com/filingradar/filingradar/internal/storage/pg"
	"github.com/filingradar/filingradar/pkg/config/env"
)

const archiveTimeout = 5 * time.Second

func main() {
	if err := env.LoadDotEnv("cmd/feedserver/.env"); err != nil {
		slog.Warn("Continuing without .env file", "error", err)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	cfg, err := LoadAppConfig()
	if err != nil {
		slog.Error("Failed to load app config", "error", err)
		os.Exit(1)
	}

	rules, err := loadRules(cfg.RulesPath)
	if err != nil {
		slog.Error("Failed to load classification rules", "error", err, "path", cfg.RulesPath)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := pipeline.New(rules)
	dedup := pipeline.NewDedupCache(cfg.DedupCapacity)

	coordinator := live.NewCoordinator(live.Config{
		Dial:     live.Dialer(cfg.LiveWSURL, 10*time.Second),
		Pipeline: pipe,
		Dedup:    dedup,
	})
	coordinator.Start(ctx)
	for _, room := range cfg.LiveRooms {
		coordinator.Join(room)
	}

	pollClient := poll.NewClient(poll.Config{
		BaseURL:     cfg.PollBaseURL,
		FallbackURL: cfg.PollFallbackURL,
	})
	runner := poll.NewRunner(pollClient, coordinator, cfg.PollInterval)
	go runner.Run(ctx)

	routerOpts := make([]router.Option, 0)

	var pool *pg.ConnectionPool
	var pgStorer *pg.Storer
	if cfg.DatabaseURL != "" {
		pool, err = pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.DatabaseURL})
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		pgStorer = pg.NewStorer(pool)
		routerOpts = append(routerOpts,
			router.WithCompanySearcher(pgStorer),
			router.WithHealthChecker(pool),
		)
	}

	var esStorer *es.Storer
	if len(cfg.ESAddresses) > 0 {
		esStorer, err = es.NewStorer(ctx, es.Config{
			Addresses: cfg.ESAddresses,
			IndexName: cfg.ESIndex,
			Username:  cfg.ESUsername,
			Password:  cfg.ESPassword,
		})
		if err != nil {
			slog.Error("Failed to connect to Elasticsearch", "error", err)
			os.Exit(1)
		}
	}

	records, unsubscribe := coordinator.SubscribeRecords(256)
	go archiveLoop(ctx, records, pgStorer, esStorer)

	s := server.NewServer(echo.New(), sCfg)
	router.NewFeedRouter(s.Echo, coordinator, routerOpts...).Bind()

	s.OnShutdown(func() {
		slog.Info("Shutdown started, cleaning up resources...")
		unsubscribe()
		coordinator.Close()
		cancel()
		if pool != nil {
			pool.Close()
		}
	})

	if err := s.Start(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func loadRules(path string) (pipeline.Rules, error) {
	if path == "" {
		return pipeline.DefaultRules(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Rules{}, err
	}
	defer f.Close()
	return pipeline.LoadRules(f)
}

// archiveLoop drains freshly admitted announcements into whichever archive
// backends are configured. Archive failures are logged, never fatal.
func archiveLoop(ctx context.Context, records <-chan domain.Announcement, pgStorer *pg.Storer, esStorer *es.Storer) {
	if pgStorer == nil && esStorer == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-records:
			saveCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
			if pgStorer != nil {
				if err := pgStorer.SaveAnnouncement(saveCtx, rec); err != nil {
					slog.Warn("Failed to archive announcement", "identity_key", rec.IdentityKey, "error", err)
				}
			}
			if esStorer != nil {
				if err := esStorer.Index(saveCtx, rec); err != nil {
					slog.Warn("Failed to index announcement", "identity_key", rec.IdentityKey, "error", err)
				}
			}
			cancel()
		}
	}
}
