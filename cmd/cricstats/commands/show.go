package commands

import (
	"fmt"
	"os"
	"strconv"

	"cricstats/internal/dashboard"
	"cricstats/internal/innings"
	"cricstats/pkg/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var thresholds dashboard.Thresholds

func init() {
	showCmd.Flags().Float64Var(&thresholds.MinBallsFaced, "min-bf", 0, "Only show innings with at least this many balls faced.")
	showCmd.Flags().Float64Var(&thresholds.MinStrikeRate, "min-sr", 0, "Only show innings with at least this strike rate.")
	showCmd.Flags().Float64Var(&thresholds.MinRuns, "min-runs", 0, "Only show innings with at least this many runs.")
	rootCmd.AddCommand(showCmd)
}

func stat(v float64) string {
	if innings.IsMissing(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var showCmd = &cobra.Command{
	Use:   "show <player> [--min-bf <n>] [--min-sr <n>] [--min-runs <n>]",
	Short: "Prints the innings of a player that reach the given thresholds.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return fmt.Errorf("set up: %w", err)
		}
		defer e.Close()

		err = dashboard.State{Thresholds: thresholds}.Validate()
		if err != nil {
			return fmt.Errorf("invalid thresholds: %w", err)
		}

		players, err := e.store.Players(ctx)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		player, similarity, ok := textutil.Closest(args[0], players)
		if !ok {
			return fmt.Errorf("no such player %q", args[0])
		}
		if similarity < 1 {
			fmt.Fprintf(os.Stderr, "showing %s, the closest match to %q\n", player, args[0])
		}

		all, err := e.store.Innings(ctx, player)
		if err != nil {
			return fmt.Errorf("read innings: %w", err)
		}
		selected := dashboard.Filter(all, thresholds)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(player)
		t.AppendHeader(table.Row{"Date", "Opposition", "Ground", "Pos", "Runs", "BF", "SR", "4s", "6s", "Dismissal"})
		for _, in := range selected {
			runs := stat(in.Runs)
			if in.NotOut {
				runs += "*"
			}
			t.AppendRow(table.Row{
				in.StartDate,
				in.Opposition,
				in.Ground,
				in.Position,
				runs,
				stat(in.BallsFaced),
				stat(in.StrikeRate),
				stat(in.Fours),
				stat(in.Sixes),
				in.Dismissal,
			})
		}
		t.AppendFooter(table.Row{
			"", "", "", "",
			fmt.Sprintf("%.1f %% of %d innings", dashboard.Coverage(len(selected), len(all)), len(all)),
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
