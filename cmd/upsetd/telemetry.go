package main

import (
	"context"
	"log/slog"

	"upset-backend/lib/restyutil"
	"upset-backend/lib/scrapers/ufc"
	"upset-backend/lib/serviceutil"
	"upset-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "upsetd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Error("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	ufc.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/ufc"),
	)
}
