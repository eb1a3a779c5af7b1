package commands

import (
	"strings"

	"upset-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int

func init() {
	searchLimit = searchCmd.Flags().Int("limit", 10, "Maximum number of results.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <name>...",
	Short: "Searches the athlete directory by name.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		query := strings.Join(args, " ")
		fighters, err := provider.SearchFighters(ctx, query, *searchLimit)
		if err != nil {
			serviceutil.Fatal("search fighters", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Nickname", "Weight Class", "Record"})
		for _, f := range fighters {
			t.AppendRow(table.Row{
				f.ExternalId,
				f.Name,
				f.Nickname,
				f.WeightClass,
				formatRecord(f.Record),
			})
		}
		t.Render()
	},
}
