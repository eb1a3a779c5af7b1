package commands

import (
	"os"

	"upset-backend/lib/fightdata"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probes the fight data source once and reports its state.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		status := provider.HealthCheck(ctx)

		t := newTable()
		t.AppendRow(table.Row{"Status", string(status.Status)})
		t.AppendRow(table.Row{"Latency", status.LatencyMs})
		t.AppendRow(table.Row{"Can Fetch", status.CanFetch})
		t.AppendRow(table.Row{"Can Parse", status.CanParse})
		t.AppendRow(table.Row{"Error", status.Error})
		t.Render()

		if status.Status == fightdata.Unhealthy {
			os.Exit(1)
		}
	},
}
