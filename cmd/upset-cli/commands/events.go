package commands

import (
	"upset-backend/lib/fightdata"
	"upset-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var eventsPast *bool
var eventsLimit *int

func init() {
	eventsPast = eventsCmd.Flags().Bool("past", false, "List recently completed events instead of upcoming ones.")
	eventsLimit = eventsCmd.Flags().Int("limit", 10, "Maximum number of events to list.")
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events [--past] [--limit <n>]",
	Short: "Lists upcoming or recently completed events.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		var events []fightdata.Event
		var err error
		if *eventsPast {
			events, err = provider.CompletedEvents(ctx, *eventsLimit)
		} else {
			events, err = provider.UpcomingEvents(ctx)
		}
		if err != nil {
			serviceutil.Fatal("fetch events", err)
		}
		if *eventsLimit > 0 && len(events) > *eventsLimit {
			events = events[:*eventsLimit]
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Date", "Location", "Status"})
		for _, e := range events {
			date := "TBD"
			if e.Date != nil {
				date = e.Date.Format("2006-01-02 15:04 MST")
			}
			t.AppendRow(table.Row{e.ExternalId, e.Name, date, e.Location, e.Status})
		}
		t.Render()
	},
}
