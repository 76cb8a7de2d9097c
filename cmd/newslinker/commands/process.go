package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Runs the linker once over every unprocessed news item.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.container.Linker.ProcessPending(cmd.Context())
			if err != nil {
				return err
			}

			t := c.newTable()
			t.AppendHeader(table.Row{"Processed", "Updated players", "Errors", "Skipped", "Failed"})
			t.AppendRow(table.Row{result.Processed, result.UpdatedPlayers, result.Errors, result.Skipped, result.Failed})
			t.Render()
			return nil
		},
	}
}
