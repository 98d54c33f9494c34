package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playersCmd)
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Lists the players stored in the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return fmt.Errorf("set up: %w", err)
		}
		defer e.Close()

		players, err := e.store.Registry(cmd.Context())
		if err != nil {
			return fmt.Errorf("read players: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Table", "Name", "Innings", "Updated"})
		for _, p := range players {
			t.AppendRow(table.Row{
				p.SiteID,
				p.Table,
				p.DisplayName,
				p.Innings,
				p.Updated().In(e.time.Location()).Format("2006-01-02 15:04"),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
