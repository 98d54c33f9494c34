package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cricstats/internal/ingest"
	"cricstats/internal/innings"
	"cricstats/internal/scrapers/cricinfo"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	rosterUrl   string
	scrapeLimit int
)

func init() {
	scrapeCmd.Flags().StringVar(&rosterUrl, "roster-url", "", "The roster page listing the players to scrape, overrides the config.")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "Scrape at most this many players from the roster, 0 means all.")
	rootCmd.AddCommand(scrapeCmd)
}

func parseIds(args []string) ([]cricinfo.PlayerID, error) {
	ids := make([]cricinfo.PlayerID, len(args))
	for i, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("player id %q: %w", arg, err)
		}
		ids[i] = cricinfo.PlayerID(n)
	}
	return ids, nil
}

func locator(tableIndex int) innings.Locator {
	if tableIndex > 0 {
		return innings.IndexLocator{Index: tableIndex}
	}
	return innings.DefaultLocator
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [ids...] [--roster-url <url>] [--limit <n>]",
	Short: "Scrapes the batting innings of players into the database.",
	Long: "Scrapes the batting innings of the players with the given ids, or of every player " +
		"linked from the roster page when no ids are given. A player that fails is reported " +
		"and skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return fmt.Errorf("set up: %w", err)
		}
		defer e.Close()

		opts, err := cricinfo.OptionsFromConfig(e.cfg.Scraper)
		if err != nil {
			return fmt.Errorf("configure scraper: %w", err)
		}
		client := cricinfo.NewClient(opts, e.tel)

		ids, err := parseIds(args)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			url := e.cfg.Scraper.RosterUrl
			if rosterUrl != "" {
				url = rosterUrl
			}
			ids, err = client.Roster(ctx, url)
			if err != nil {
				return fmt.Errorf("read roster: %w", err)
			}
		}
		if scrapeLimit > 0 && len(ids) > scrapeLimit {
			ids = ids[:scrapeLimit]
		}

		ingestor := ingest.NewIngestor(client, e.store, locator(e.cfg.Scraper.TableIndex), e.tel)

		start := time.Now()
		summary := ingestor.IngestAll(ctx, ids)
		slog.Info(
			"scrape finished",
			"players", len(ids),
			"stored", summary.Stored,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"seconds", time.Since(start).Seconds(),
		)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Table", "Innings", "Outcome", "Error"})
		for _, r := range summary.Results {
			errText := ""
			if r.Err != nil && !r.Outcome.Skipped() {
				errText = r.Err.Error()
			}
			t.AppendRow(table.Row{r.ID, r.Name, r.Table, r.Innings, r.Outcome, errText})
		}
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d stored, %d skipped, %d failed", summary.Stored, summary.Skipped, summary.Failed)})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
