package commands

import (
	"log/slog"
	"time"

	"upset-backend/lib/fightstore"
	"upset-backend/lib/serviceutil"
	"upset-backend/lib/sqliteutil"
	"upset-backend/services/ingest"

	"github.com/spf13/cobra"
)

var syncDb *string
var syncResultsLimit *int
var syncWorkers *int

func init() {
	syncDb = syncCmd.Flags().String("db", "upset.db", "The database to write sync results to.")
	syncResultsLimit = syncCmd.Flags().Int("results-limit", 12, "How many completed events to refresh.")
	syncWorkers = syncCmd.Flags().Int("workers", 4, "How many pages to fetch concurrently.")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [--db <path/to/output.db>] [--results-limit <n>] [--workers <n>]",
	Short: "Runs one full sync cycle against the source and writes to a database.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		database, err := sqliteutil.OpenFile(*syncDb)
		if err != nil {
			serviceutil.Fatal("open db", err)
		}
		defer database.Close()

		store := fightstore.NewStore(database)
		err = store.Init(ctx)
		if err != nil {
			serviceutil.Fatal("init db schema", err)
		}

		service := ingest.NewService(provider, store, ingest.Options{
			Workers: *syncWorkers,
		})

		t1 := time.Now()
		stats, err := service.RunOnce(ctx, *syncResultsLimit)
		t2 := time.Now()
		if err != nil {
			slog.Error("sync finished with failures", "err", err)
		}

		slog.Info(
			"sync done",
			"run_id", stats.RunId,
			"events", stats.Events,
			"fights", stats.Fights,
			"fighters", stats.Fighters,
			"profiles", stats.Profiles,
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
