// Package ingest pulls event, fight and fighter data out of a
// fightdata.Provider and persists it through fightstore. Sync runs are
// resilient by construction, one broken card page never aborts the
// rest of a run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/fightstore"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/ingest")

type Service struct {
	provider fightdata.Provider
	store    fightstore.Store
	workers  int
}

type Options struct {
	// cap on concurrent page fetches during fan-out syncs, defaults
	// to 4. the provider's rate limiter still applies underneath.
	Workers int
}

func NewService(provider fightdata.Provider, store fightstore.Store, opts Options) Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return Service{
		provider: provider,
		store:    store,
		workers:  opts.Workers,
	}
}

// SyncStats summarizes one sync run for logs and callers. RunId ties
// together the log lines of a single run.
type SyncStats struct {
	RunId    string
	Events   int
	Fights   int
	Fighters int
	Profiles int
}

func newRunId() string {
	id, err := random.String(8)
	if err != nil {
		return "unknown"
	}
	return id
}

// SyncUpcoming refreshes the upcoming event slate along with each
// event's fight card. Card failures are collected and joined rather
// than aborting the run, whatever was fetched cleanly gets persisted.
func (s Service) SyncUpcoming(ctx context.Context) (SyncStats, error) {
	ctx, span := tracer.Start(ctx, "SyncUpcoming")
	defer span.End()

	stats := SyncStats{RunId: newRunId()}
	span.SetAttributes(attribute.String("run_id", stats.RunId))
	slog.InfoContext(ctx, "sync upcoming: start", "run_id", stats.RunId)

	events, err := s.provider.UpcomingEvents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list upcoming events")
		return stats, err
	}
	err = s.store.UpsertEvents(ctx, events)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist events")
		return stats, err
	}
	stats.Events = len(events)

	var errList []error
	for _, event := range events {
		fights, err := s.provider.EventFightCard(ctx, event.ExternalId)
		if err != nil {
			slog.ErrorContext(
				ctx, "sync upcoming: card failed",
				"run_id", stats.RunId,
				"event", event.ExternalId,
				"err", err,
			)
			errList = append(errList, fmt.Errorf("card %s: %w", event.ExternalId, err))
			continue
		}
		err = s.store.UpsertFights(ctx, fights)
		if err != nil {
			errList = append(errList, fmt.Errorf("persist card %s: %w", event.ExternalId, err))
			continue
		}
		stats.Fights += len(fights)
	}

	slog.InfoContext(
		ctx, "sync upcoming: done",
		"run_id", stats.RunId,
		"events", stats.Events,
		"fights", stats.Fights,
		"failures", len(errList),
	)
	return stats, errors.Join(errList...)
}

// SyncResults refreshes recently completed events and their final
// cards. Cards are fetched concurrently under the worker cap, the
// provider's own rate limiter keeps the fan-out polite.
func (s Service) SyncResults(ctx context.Context, limit int) (SyncStats, error) {
	ctx, span := tracer.Start(ctx, "SyncResults", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	stats := SyncStats{RunId: newRunId()}
	span.SetAttributes(attribute.String("run_id", stats.RunId))
	slog.InfoContext(ctx, "sync results: start", "run_id", stats.RunId, "limit", limit)

	events, err := s.provider.CompletedEvents(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list completed events")
		return stats, err
	}
	err = s.store.UpsertEvents(ctx, events)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist events")
		return stats, err
	}
	stats.Events = len(events)

	var errList []error
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}
	sem := make(chan struct{}, s.workers)

	for _, event := range events {
		event := event
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fights, err := s.provider.EventFightCard(ctx, event.ExternalId)
			if err != nil {
				slog.ErrorContext(
					ctx, "sync results: card failed",
					"run_id", stats.RunId,
					"event", event.ExternalId,
					"err", err,
				)
				lock.Lock()
				defer lock.Unlock()
				errList = append(errList, fmt.Errorf("card %s: %w", event.ExternalId, err))
				return
			}

			err = s.store.UpsertFights(ctx, fights)
			lock.Lock()
			defer lock.Unlock()
			if err != nil {
				errList = append(errList, fmt.Errorf("persist card %s: %w", event.ExternalId, err))
				return
			}
			stats.Fights += len(fights)
		}()
	}
	wg.Wait()

	slog.InfoContext(
		ctx, "sync results: done",
		"run_id", stats.RunId,
		"events", stats.Events,
		"fights", stats.Fights,
		"failures", len(errList),
	)
	return stats, errors.Join(errList...)
}

// SyncRankings refreshes the divisional ladders. Ranking rows carry
// less detail than profile pages, so fields already in the store win
// over empty incoming ones.
func (s Service) SyncRankings(ctx context.Context) (SyncStats, error) {
	ctx, span := tracer.Start(ctx, "SyncRankings")
	defer span.End()

	stats := SyncStats{RunId: newRunId()}
	span.SetAttributes(attribute.String("run_id", stats.RunId))
	slog.InfoContext(ctx, "sync rankings: start", "run_id", stats.RunId)

	ranked, err := s.provider.Rankings(ctx, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch rankings")
		return stats, err
	}

	merged := make([]fightdata.Fighter, 0, len(ranked))
	for _, fighter := range ranked {
		existing, found, err := s.store.GetFighter(ctx, fighter.ExternalId)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read existing fighter")
			return stats, err
		}
		if found {
			fighter = mergeFighter(existing, fighter)
		}
		merged = append(merged, fighter)
	}

	err = s.store.UpsertFighters(ctx, merged)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist fighters")
		return stats, err
	}
	stats.Fighters = len(merged)

	slog.InfoContext(
		ctx, "sync rankings: done",
		"run_id", stats.RunId,
		"fighters", stats.Fighters,
	)
	return stats, nil
}

// mergeFighter overlays incoming ranking data on a stored fighter
// without erasing profile detail the ladder page doesn't carry.
func mergeFighter(existing, incoming fightdata.Fighter) fightdata.Fighter {
	out := incoming
	if out.Nickname == "" {
		out.Nickname = existing.Nickname
	}
	if (out.Record == fightdata.Record{}) {
		out.Record = existing.Record
	}
	if out.WeightClass == "" {
		out.WeightClass = existing.WeightClass
	}
	if out.ImageUrl == "" {
		out.ImageUrl = existing.ImageUrl
	}
	return out
}

// SyncFighter refreshes one fighter from their profile page. A nil
// result from the provider means the athlete page is gone, which is
// not an error.
func (s Service) SyncFighter(ctx context.Context, fighterId string) (bool, error) {
	ctx, span := tracer.Start(ctx, "SyncFighter", trace.WithAttributes(
		attribute.String("fighter_id", fighterId),
	))
	defer span.End()

	fighter, err := s.provider.FighterDetails(ctx, fighterId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch fighter details")
		return false, err
	}
	if fighter == nil {
		span.AddEvent("fighter not found upstream")
		return false, nil
	}

	// profile pages don't show ladder position for everyone, keep a
	// ranking we already learned from the rankings page
	existing, found, err := s.store.GetFighter(ctx, fighter.ExternalId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read existing fighter")
		return false, err
	}
	if found && fighter.Ranking == nil {
		fighter.Ranking = existing.Ranking
	}

	err = s.store.UpsertFighters(ctx, []fightdata.Fighter{*fighter})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist fighter")
		return false, err
	}
	return true, nil
}

// SyncFighterProfiles re-fetches the profile page of every ranked
// fighter in the store, fanning out under the worker cap. Profile
// pages carry the nickname, record and image detail the ladder page
// doesn't.
func (s Service) SyncFighterProfiles(ctx context.Context) (SyncStats, error) {
	ctx, span := tracer.Start(ctx, "SyncFighterProfiles")
	defer span.End()

	stats := SyncStats{RunId: newRunId()}
	span.SetAttributes(attribute.String("run_id", stats.RunId))

	fighters, err := s.store.ListRankedFighters(ctx, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list ranked fighters")
		return stats, err
	}
	slog.InfoContext(
		ctx, "sync profiles: start",
		"run_id", stats.RunId,
		"fighters", len(fighters),
	)

	var errList []error
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}
	sem := make(chan struct{}, s.workers)

	for _, fighter := range fighters {
		fighter := fighter
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			synced, err := s.SyncFighter(ctx, fighter.ExternalId)
			lock.Lock()
			defer lock.Unlock()
			if err != nil {
				errList = append(errList, fmt.Errorf("fighter %s: %w", fighter.ExternalId, err))
				return
			}
			if synced {
				stats.Profiles++
			}
		}()
	}
	wg.Wait()

	slog.InfoContext(
		ctx, "sync profiles: done",
		"run_id", stats.RunId,
		"profiles", stats.Profiles,
		"failures", len(errList),
	)
	return stats, errors.Join(errList...)
}

// RunOnce executes a full sync cycle: upcoming slate, recent results,
// rankings, then ranked fighter profiles. Partial failures are joined
// and returned after every stage has had its chance to run.
func (s Service) RunOnce(ctx context.Context, resultsLimit int) (SyncStats, error) {
	ctx, span := tracer.Start(ctx, "RunOnce")
	defer span.End()

	var errList []error
	total := SyncStats{RunId: newRunId()}
	span.SetAttributes(attribute.String("run_id", total.RunId))

	upcoming, err := s.SyncUpcoming(ctx)
	if err != nil {
		errList = append(errList, fmt.Errorf("upcoming: %w", err))
	}
	results, err := s.SyncResults(ctx, resultsLimit)
	if err != nil {
		errList = append(errList, fmt.Errorf("results: %w", err))
	}
	rankings, err := s.SyncRankings(ctx)
	if err != nil {
		errList = append(errList, fmt.Errorf("rankings: %w", err))
	}
	profiles, err := s.SyncFighterProfiles(ctx)
	if err != nil {
		errList = append(errList, fmt.Errorf("profiles: %w", err))
	}

	total.Events = upcoming.Events + results.Events
	total.Fights = upcoming.Fights + results.Fights
	total.Fighters = rankings.Fighters
	total.Profiles = profiles.Profiles

	err = errors.Join(errList...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync cycle finished with failures")
	}
	return total, err
}
