package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"time"

	"upset-backend/lib/configutil"
	"upset-backend/lib/fightdata"
	"upset-backend/lib/fightstore"
	"upset-backend/lib/scrapers/ufc"
	"upset-backend/lib/serviceutil"
	"upset-backend/lib/webfetch"
	"upset-backend/services/ingest"
)

const DEFAULT_PORT = 8400

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialSync := flag.Bool("sync", false, "Trigger a full sync immediately on run.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port <= 0 {
		cfg.Port = DEFAULT_PORT
	}

	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	store := fightstore.NewStore(database)
	err = store.Init(ctx)
	if err != nil {
		serviceutil.Fatal("init database schema", err)
	}

	provider, err := ufc.NewClient(ctx, ufc.ClientOptions{
		BaseUrl:     cfg.Scraper.BaseUrl,
		Identity:    cfg.Scraper.Identity,
		MaxRequests: cfg.Scraper.MaxRequests,
		Window:      time.Duration(cfg.Scraper.WindowSeconds) * time.Second,
		Fetch: webfetch.Options{
			BrowserBypass: cfg.Scraper.BrowserBypass,
		},
	})
	if err != nil {
		serviceutil.Fatal("init scraper client", err)
	}

	service := ingest.NewService(provider, store, ingest.Options{
		Workers: cfg.Schedule.Workers,
	})
	alerter := ingest.NewHealthAlerter(provider, cfg.Smtp)

	err = InitSchedules(ctx, service, alerter, cfg.Schedule)
	if err != nil {
		serviceutil.Fatal("register schedules", err)
	}

	if *initialSync {
		go func() {
			limit := cfg.Schedule.ResultsLimit
			if limit <= 0 {
				limit = DEFAULT_RESULTS_LIMIT
			}
			stats, err := service.RunOnce(ctx, limit)
			if err != nil {
				slog.ErrorContext(ctx, "initial sync finished with failures", "err", err)
			}
			slog.InfoContext(
				ctx, "initial sync done",
				"run_id", stats.RunId,
				"events", stats.Events,
				"fights", stats.Fights,
				"fighters", stats.Fighters,
				"profiles", stats.Profiles,
			)
		}()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status, probed := alerter.Last()
		if !probed {
			// nothing has run yet, probe once instead of guessing
			status = alerter.Check(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if status.Status == fightdata.Unhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		err := json.NewEncoder(w).Encode(map[string]any{
			"status":     status.Status,
			"latency_ms": status.LatencyMs,
			"can_fetch":  status.CanFetch,
			"can_parse":  status.CanParse,
			"error":      status.Error,
		})
		if err != nil {
			slog.ErrorContext(r.Context(), "write healthz response", "err", err)
		}
	})

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()
}
