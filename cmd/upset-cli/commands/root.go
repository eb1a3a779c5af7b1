package commands

import (
	"context"
	"fmt"
	"os"

	"upset-backend/lib/fightdata"
	"upset-backend/lib/scrapers/ufc"
	"upset-backend/lib/serviceutil"
	"upset-backend/lib/webfetch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "upset-cli",
	Short: "upset-cli pokes at the fight data source and the local store from the terminal.",
}

var baseUrl *string
var browserBypass *bool

func init() {
	baseUrl = rootCmd.PersistentFlags().String(
		"base-url", ufc.DEFAULT_BASE_URL,
		"Base url of the fight data source.",
	)
	browserBypass = rootCmd.PersistentFlags().Bool(
		"browser-bypass", false,
		"Route requests through the cloudflare bypass transport.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newProvider(ctx context.Context) *ufc.Client {
	client, err := ufc.NewClient(ctx, ufc.ClientOptions{
		BaseUrl: *baseUrl,
		Fetch: webfetch.Options{
			BrowserBypass: *browserBypass,
		},
	})
	if err != nil {
		serviceutil.Fatal("init scraper client", err)
	}
	return client
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func formatRecord(record fightdata.Record) string {
	out := fmt.Sprintf("%d-%d-%d", record.Wins, record.Losses, record.Draws)
	if record.NoContests > 0 {
		out = fmt.Sprintf("%s (%d NC)", out, record.NoContests)
	}
	return out
}
