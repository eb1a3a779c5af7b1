package main

import (
	"context"
	"fmt"
	"log/slog"

	"upset-backend/services/ingest"

	"github.com/robfig/cron/v3"
)

const (
	DEFAULT_UPCOMING_SPEC = "@every 6h"
	DEFAULT_RESULTS_SPEC  = "@every 1h"
	DEFAULT_RANKINGS_SPEC = "@every 24h"
	DEFAULT_PROFILES_SPEC = "@every 24h"
	DEFAULT_HEALTH_SPEC   = "@every 5m"
	DEFAULT_RESULTS_LIMIT = 12
)

func InitSchedules(
	ctx context.Context,
	service ingest.Service,
	alerter *ingest.HealthAlerter,
	cfg ScheduleConfig,
) error {
	if cfg.Upcoming == "" {
		cfg.Upcoming = DEFAULT_UPCOMING_SPEC
	}
	if cfg.Results == "" {
		cfg.Results = DEFAULT_RESULTS_SPEC
	}
	if cfg.Rankings == "" {
		cfg.Rankings = DEFAULT_RANKINGS_SPEC
	}
	if cfg.Profiles == "" {
		cfg.Profiles = DEFAULT_PROFILES_SPEC
	}
	if cfg.Health == "" {
		cfg.Health = DEFAULT_HEALTH_SPEC
	}
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = DEFAULT_RESULTS_LIMIT
	}

	scheduler := cron.New()

	_, err := scheduler.AddFunc(cfg.Upcoming, func() {
		_, err := service.SyncUpcoming(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled upcoming sync", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("upcoming spec %q: %w", cfg.Upcoming, err)
	}

	_, err = scheduler.AddFunc(cfg.Results, func() {
		_, err := service.SyncResults(ctx, cfg.ResultsLimit)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled results sync", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("results spec %q: %w", cfg.Results, err)
	}

	_, err = scheduler.AddFunc(cfg.Rankings, func() {
		_, err := service.SyncRankings(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled rankings sync", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("rankings spec %q: %w", cfg.Rankings, err)
	}

	_, err = scheduler.AddFunc(cfg.Profiles, func() {
		_, err := service.SyncFighterProfiles(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled profiles sync", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("profiles spec %q: %w", cfg.Profiles, err)
	}

	_, err = scheduler.AddFunc(cfg.Health, func() {
		alerter.Check(ctx)
	})
	if err != nil {
		return fmt.Errorf("health spec %q: %w", cfg.Health, err)
	}

	scheduler.Start()
	go func() {
		<-ctx.Done()
		scheduler.Stop()
	}()

	slog.InfoContext(
		ctx, "sync schedules registered",
		"upcoming", cfg.Upcoming,
		"results", cfg.Results,
		"rankings", cfg.Rankings,
		"profiles", cfg.Profiles,
		"health", cfg.Health,
	)
	return nil
}
