package commands

import (
	"strconv"
	"strings"

	"upset-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rankingsCmd)
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings [division]",
	Short: "Lists the divisional ladders, optionally filtered to one division.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		division := strings.Join(args, " ")
		fighters, err := provider.Rankings(ctx, division)
		if err != nil {
			serviceutil.Fatal("fetch rankings", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Division", "Rank", "Id", "Name"})
		for _, f := range fighters {
			rank := "C"
			if f.Ranking != nil && *f.Ranking > 0 {
				rank = strconv.Itoa(*f.Ranking)
			}
			t.AppendRow(table.Row{f.WeightClass, rank, f.ExternalId, f.Name})
		}
		t.Render()
	},
}
