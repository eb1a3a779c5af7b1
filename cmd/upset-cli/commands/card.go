package commands

import (
	"upset-backend/lib/fightdata"
	"upset-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cardCmd)
}

func describeResult(fight fightdata.Fight) string {
	switch fight.Winner {
	case fightdata.WinnerCornerA:
		return fight.CornerA.Name
	case fightdata.WinnerCornerB:
		return fight.CornerB.Name
	case fightdata.WinnerDraw:
		return "draw"
	case fightdata.WinnerNoContest:
		return "no contest"
	}
	return "-"
}

// the page's own label reads better than the coarse bucket when the
// source provides one
func describeMethod(fight fightdata.Fight) string {
	if fight.MethodText != "" {
		return fight.MethodText
	}
	return string(fight.Method)
}

var cardCmd = &cobra.Command{
	Use:   "card <event-id>",
	Short: "Lists the fight card of one event.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		provider := newProvider(ctx)

		fights, err := provider.EventFightCard(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("fetch fight card", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Red", "Blue", "Weight Class", "Winner", "Method", "Round", "Time"})
		for _, fight := range fights {
			t.AppendRow(table.Row{
				fight.OrderIndex,
				fight.CornerA.Name,
				fight.CornerB.Name,
				fight.WeightClass,
				describeResult(fight),
				describeMethod(fight),
				fight.Round,
				fight.Time,
			})
		}
		t.Render()
	},
}
