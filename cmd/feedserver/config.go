package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/filingradar/filingradar/internal/pipeline"
	"github.com/filingradar/filingradar/internal/poll"
	"github.com/filingradar/filingradar/pkg/utils"
)

type AppConfig struct {
	PollBaseURL     string
	PollFallbackURL string
	PollInterval    time.Duration

	LiveWSURL string
	LiveRooms []string

	DedupCapacity int
	RulesPath     string

	DatabaseURL string

	ESAddresses []string
	ESIndex     string
	ESUsername  string
	ESPassword  string
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		PollBaseURL:     envOr("POLL_BASE_URL", "http://localhost:5001/api"),
		PollFallbackURL: os.Getenv("POLL_FALLBACK_URL"),
		PollInterval:    poll.DefaultInterval,
		LiveWSURL:       envOr("LIVE_WS_URL", "ws://localhost:5001/ws"),
		LiveRooms:       splitList(envOr("LIVE_ROOMS", "all")),
		DedupCapacity:   pipeline.DefaultDedupCapacity,
		RulesPath:       os.Getenv("RULES_PATH"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ESAddresses:     splitList(os.Getenv("ES_ADDRESSES")),
		ESIndex:         envOr("ES_INDEX", "corporate-filings"),
		ESUsername:      os.Getenv("ES_USERNAME"),
		ESPassword:      os.Getenv("ES_PASSWORD"),
	}

	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid POLL_INTERVAL %q: must be a positive duration", raw)
		}
		cfg.PollInterval = interval
	}

	if raw := os.Getenv("DEDUP_CAPACITY"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil || capacity < 1 {
			return nil, fmt.Errorf("invalid DEDUP_CAPACITY %q: must be a positive number", raw)
		}
		cfg.DedupCapacity = capacity
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return utils.RemoveEmptyStrings(parts)
}
