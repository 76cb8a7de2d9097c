package commands

import (
	"bytes"
	"os"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

// newsFileItem accepts the collector's field names; content and flair are
// the names the subreddit collector writes.
type newsFileItem struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Content   string    `json:"content"`
	Tier      int       `json:"tier"`
	Flair     string    `json:"flair"`
	CreatedAt time.Time `json:"created_at"`
}

func (f newsFileItem) toDomain() news.Item {
	body := f.Body
	if strings.TrimSpace(body) == "" {
		body = f.Content
	}
	tier := news.Tier(f.Tier)
	if tier == 0 && f.Flair != "" {
		tier, _ = news.TierFromFlair(f.Flair)
	}
	return news.Item{
		ID:        strings.TrimSpace(f.ID),
		Source:    strings.TrimSpace(f.Source),
		URL:       strings.TrimSpace(f.URL),
		Title:     f.Title,
		Body:      body,
		Tier:      tier,
		CreatedAt: f.CreatedAt,
	}
}

// parseNewsFile reads either one object or an array of objects.
func parseNewsFile(data []byte) ([]newsFileItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("news file is empty")
	}
	if trimmed[0] == '[' {
		var items []newsFileItem
		if err := sonic.ConfigStd.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrap(err, "decode news array")
		}
		return items, nil
	}
	var item newsFileItem
	if err := sonic.ConfigStd.Unmarshal(trimmed, &item); err != nil {
		return nil, errors.Wrap(err, "decode news item")
	}
	return []newsFileItem{item}, nil
}

func (c *cli) addNewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-news <file>",
		Short: "Queues news items from a JSON file. Items with a known id are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			items, err := parseNewsFile(data)
			if err != nil {
				return err
			}

			t := c.newTable()
			t.AppendHeader(table.Row{"News ID", "Tier", "Result"})
			added := 0
			for _, raw := range items {
				item := raw.toDomain()
				result := "added"
				switch err := c.container.Linker.SubmitNews(cmd.Context(), item); {
				case err == nil:
					added++
				case errors.Is(err, usecase.ErrConflict):
					result = "skipped: already stored"
				case errors.Is(err, usecase.ErrInvalidInput):
					result = "rejected: " + err.Error()
				default:
					return err
				}
				t.AppendRow(table.Row{item.ID, int(item.Tier), result})
			}
			t.AppendFooter(table.Row{"Added", added, ""})
			t.Render()
			return nil
		},
	}
}
