package commands

import (
	"context"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/felixbhw/n17-dash/internal/app"
)

// Builder opens the configured stores and services.
type Builder func(ctx context.Context) (*app.Container, error)

type cli struct {
	build     Builder
	out       io.Writer
	container *app.Container
}

func NewRoot(build Builder, out io.Writer) *cobra.Command {
	if out == nil {
		out = os.Stdout
	}
	c := &cli{build: build, out: out}

	root := &cobra.Command{
		Use:           "newslinker",
		Short:         "newslinker links collected transfer news to player records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			container, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			c.container = container
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.container.Close()
		},
	}
	root.SetOut(out)

	root.AddCommand(
		c.processCmd(),
		c.resolveCmd(),
		c.showCmd(),
		c.listCmd(),
		c.addNewsCmd(),
		c.resetStatusCmd(),
		c.deleteEventCmd(),
	)
	return root
}

func (c *cli) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(c.out)
	return t
}
