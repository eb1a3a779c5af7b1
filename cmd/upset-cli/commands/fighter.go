package commands

import (
	"fmt"
	"log/slog"
	"os"

	"upset-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fighterCmd)
}

var fighterCmd = &cobra.Command{
	Use:   "fighter <fighter-id>",
	Short: "Shows one fighter's profile.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		fighter, err := provider.FighterDetails(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("fetch fighter details", err)
		}
		if fighter == nil {
			slog.Error("no such fighter upstream", "id", args[0])
			os.Exit(1)
		}

		record := formatRecord(fighter.Record)
		ranking := "unranked"
		switch {
		case fighter.Ranking != nil && *fighter.Ranking == 0:
			ranking = "champion"
		case fighter.Ranking != nil:
			ranking = fmt.Sprintf("#%d", *fighter.Ranking)
		}

		t := newTable()
		t.AppendRow(table.Row{"Id", fighter.ExternalId})
		t.AppendRow(table.Row{"Name", fighter.Name})
		t.AppendRow(table.Row{"Nickname", fighter.Nickname})
		t.AppendRow(table.Row{"Weight Class", fighter.WeightClass})
		t.AppendRow(table.Row{"Record", record})
		t.AppendRow(table.Row{"Ranking", ranking})
		t.AppendRow(table.Row{"Image", fighter.ImageUrl})
		t.Render()
	},
}
