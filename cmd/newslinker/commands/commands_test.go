package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixbhw/n17-dash/internal/app"
	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func newTestContainer(t *testing.T) *app.Container {
	t.Helper()
	c, err := app.New(context.Background(), config.Config{StoreDriver: config.StoreMemory, HomeTeamID: "47", LinkerMaxWorkers: 1}, logging.NewNop())
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	return c
}

func execute(t *testing.T, c *app.Container, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRoot(func(context.Context) (*app.Container, error) { return c, nil }, &out)
	root.SetArgs(args)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestAddNews_SkipsKnownIDs(t *testing.T) {
	c := newTestContainer(t)
	path := filepath.Join(t.TempDir(), "news.json")
	payload := `[
		{"id": "r-1738000000-aa1", "source": "reddit", "title": "Tel loan agreed", "flair": "Transfer News: Tier 1"},
		{"id": "r-1738000000-aa1", "source": "reddit", "title": "Tel loan agreed"},
		{"id": "r-1738000001-bb2", "content": "Spurs monitoring Kelleher", "tier": 3}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write news file: %v", err)
	}

	out, err := execute(t, c, "add-news", path)
	if err != nil {
		t.Fatalf("add-news: %v", err)
	}
	if !strings.Contains(out, "skipped: already stored") {
		t.Fatalf("expected duplicate to be reported, got:\n%s", out)
	}

	item, ok, err := c.News.Get(context.Background(), "r-1738000000-aa1")
	if err != nil || !ok {
		t.Fatalf("expected stored item, ok=%v err=%v", ok, err)
	}
	if item.Tier != news.TierOne {
		t.Fatalf("expected tier from flair, got %d", item.Tier)
	}
	second, ok, err := c.News.Get(context.Background(), "r-1738000001-bb2")
	if err != nil || !ok {
		t.Fatalf("expected second item, ok=%v err=%v", ok, err)
	}
	if second.Body != "Spurs monitoring Kelleher" {
		t.Fatalf("expected content to fill the body, got %q", second.Body)
	}
}

func TestProcess_WithoutOracleSkipsItems(t *testing.T) {
	c := newTestContainer(t)
	if err := c.News.Add(context.Background(), news.Item{ID: "r-1", Title: "Gallagher talks"}); err != nil {
		t.Fatalf("seed news: %v", err)
	}

	out, err := execute(t, c, "process")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(out, "SKIPPED") {
		t.Fatalf("expected result table, got:\n%s", out)
	}
	processed, err := c.News.IsProcessed(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("is processed: %v", err)
	}
	if processed {
		t.Fatalf("items whose extraction failed must stay unprocessed")
	}
}

func TestShowAndCorrect(t *testing.T) {
	c := newTestContainer(t)
	now := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	link := playerlink.PlayerLink{
		PlayerID: "270510",
		Name:     "Mathys Tel",
		Status:   playerlink.StatusConfirmed,
		Timeline: []playerlink.TimelineEvent{
			{Type: "medical", Details: "Medical booked", Confidence: 90, CreatedAt: now, Provenance: []string{"r-9"}, SourceTier: 1},
		},
		TransferType: playerlink.TransferTypeLoanWithOption,
		Price:        &playerlink.Price{Amount: 55000000, Currency: "EUR"},
		UpdatedAt:    now,
	}
	if err := c.Links.Save(context.Background(), link); err != nil {
		t.Fatalf("seed link: %v", err)
	}

	out, err := execute(t, c, "show", "270510")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Medical booked") || !strings.Contains(out, "here we go!") || !strings.Contains(out, "loan with option, EUR 55m") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	if _, err := execute(t, c, "reset-status", "270510", "developing"); err != nil {
		t.Fatalf("reset-status: %v", err)
	}
	if _, err := execute(t, c, "delete-event", "270510", "0"); err != nil {
		t.Fatalf("delete-event: %v", err)
	}
	stored, _, err := c.Links.Get(context.Background(), "270510")
	if err != nil {
		t.Fatalf("load link: %v", err)
	}
	if stored.Status != playerlink.StatusDeveloping || len(stored.Timeline) != 0 {
		t.Fatalf("unexpected corrected link: %+v", stored)
	}

	out, err = execute(t, c, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Mathys Tel") {
		t.Fatalf("expected player in list output:\n%s", out)
	}
}

func TestResolveAndShow_Errors(t *testing.T) {
	c := newTestContainer(t)

	if _, err := execute(t, c, "resolve", "Nobody Known"); err == nil {
		t.Fatalf("expected resolve to fail for an unknown player")
	}
	if _, err := execute(t, c, "show", "404"); err == nil {
		t.Fatalf("expected show to fail for an unknown player")
	}
	if _, err := execute(t, c, "delete-event", "404", "first"); err == nil {
		t.Fatalf("expected delete-event to reject a non-numeric index")
	}
}
