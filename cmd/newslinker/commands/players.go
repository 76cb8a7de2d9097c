package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
)

func (c *cli) resolveCmd() *cobra.Command {
	var team string
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolves a display name to a player id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, ok := c.container.Resolver.Resolve(cmd.Context(), args[0], team)
			if !ok {
				return fmt.Errorf("no player matches %q", args[0])
			}

			t := c.newTable()
			t.AppendHeader(table.Row{"Player ID", "Name", "Score", "Source"})
			t.AppendRow(table.Row{candidate.PlayerID, candidate.Name, fmt.Sprintf("%.2f", candidate.Score), candidate.Source})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "team id whose roster is searched")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists every player record.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			links, err := c.container.PlayerLinks.List(cmd.Context())
			if err != nil {
				return err
			}

			t := c.newTable()
			t.AppendHeader(table.Row{"Player ID", "Name", "Status", "Direction", "Events", "Updated"})
			for _, link := range links {
				t.AppendRow(table.Row{
					link.PlayerID,
					link.Name,
					link.Status.Label(),
					directionLabel(link.Direction),
					len(link.Timeline),
					formatTime(link.UpdatedAt),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "Total", len(links), ""})
			t.Render()
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <player-id>",
		Short: "Shows one player record with its timeline.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := c.container.PlayerLinks.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.renderLink(link)
			return nil
		},
	}
}

func (c *cli) resetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-status <player-id> <status>",
		Short: "Sets a player's status, including lowering it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := c.container.PlayerLinks.ResetStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			c.renderLink(link)
			return nil
		},
	}
}

func (c *cli) deleteEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-event <player-id> <index>",
		Short: "Removes one timeline event from a player record.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("timeline index must be an integer, got %q", args[1])
			}
			link, err := c.container.PlayerLinks.DeleteEvent(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			c.renderLink(link)
			return nil
		},
	}
}

func (c *cli) renderLink(link playerlink.PlayerLink) {
	summary := c.newTable()
	summary.AppendRows([]table.Row{
		{"Player ID", link.PlayerID},
		{"Name", link.Name},
		{"Status", link.Status.Label()},
		{"Direction", directionLabel(link.Direction)},
		{"Clubs", clubsLabel(link.RelatedClubs)},
		{"Deal", dealLabel(link.TransferType, link.Price)},
		{"Updated", formatTime(link.UpdatedAt)},
	})
	summary.Render()

	timeline := c.newTable()
	timeline.AppendHeader(table.Row{"#", "Date", "Type", "Confidence", "Tier", "News", "Details"})
	for i, event := range link.Timeline {
		tier := ""
		if event.SourceTier > 0 {
			tier = strconv.Itoa(event.SourceTier)
		}
		timeline.AppendRow(table.Row{
			i,
			formatTime(event.CreatedAt),
			event.Type,
			event.Confidence,
			tier,
			strings.Join(event.Provenance, ", "),
			event.Details,
		})
	}
	timeline.Render()
}

func directionLabel(d playerlink.Direction) string {
	if d == playerlink.DirectionUnknown {
		return "-"
	}
	return string(d)
}

func dealLabel(transferType playerlink.TransferType, price *playerlink.Price) string {
	label := strings.ReplaceAll(string(transferType), "_", " ")
	if label == "" {
		label = "-"
	}
	if price == nil {
		return label
	}
	fee := strconv.FormatFloat(price.Amount/1_000_000, 'f', -1, 64) + "m"
	if price.Currency != "" {
		fee = price.Currency + " " + fee
	}
	return label + ", " + fee
}

func clubsLabel(clubs []playerlink.RelatedClub) string {
	if len(clubs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(clubs))
	for _, club := range clubs {
		parts = append(parts, fmt.Sprintf("%s (%s)", club.Name, club.Role))
	}
	return strings.Join(parts, ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
