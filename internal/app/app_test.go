package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func TestNew_MemoryStore(t *testing.T) {
	cfg := config.Config{StoreDriver: config.StoreMemory, HTTPAddr: ":0", HomeTeamID: "47", LinkerMaxWorkers: 1}

	c, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	defer c.Close()

	if c.Linker == nil || c.PlayerLinks == nil || c.Resolver == nil {
		t.Fatalf("expected services to be wired")
	}
	if c.Mappings.Len() != 0 {
		t.Fatalf("expected empty mappings without a path, got %d", c.Mappings.Len())
	}

	srv, err := NewHTTPServer(c)
	if err != nil {
		t.Fatalf("build http server: %v", err)
	}
	if srv.Addr != ":0" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
}

func TestNew_FileStoreWithMappings(t *testing.T) {
	dir := t.TempDir()
	mappingsPath := filepath.Join(dir, "manual_player_mappings.json")
	if err := os.WriteFile(mappingsPath, []byte(`{"Mathys Tel": {"id": 270510, "name": "Mathys Tel", "current_club": "Bayern Munich", "team_id": 157}}`), 0o644); err != nil {
		t.Fatalf("write mappings: %v", err)
	}

	cfg := config.Config{StoreDriver: config.StoreFile, DataDir: dir, ManualMappingsPath: mappingsPath, HTTPAddr: ":0"}
	c, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	if c.Mappings.Len() != 1 {
		t.Fatalf("expected one mapping, got %d", c.Mappings.Len())
	}
	if _, err := os.Stat(filepath.Join(dir, "players")); err != nil {
		t.Fatalf("expected players dir to be created: %v", err)
	}
}

func TestNew_MissingMappings(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "manual_player_mappings.json")

	optional := config.Config{StoreDriver: config.StoreFile, DataDir: dir, ManualMappingsPath: missing, ManualMappingsOptional: true}
	if _, err := New(context.Background(), optional, logging.NewNop()); err != nil {
		t.Fatalf("expected defaulted mappings path to be optional, got %v", err)
	}

	explicit := config.Config{StoreDriver: config.StoreFile, DataDir: dir, ManualMappingsPath: missing}
	if _, err := New(context.Background(), explicit, logging.NewNop()); err == nil {
		t.Fatalf("expected an error for an explicit missing mappings file")
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	c, err := New(context.Background(), config.Config{StoreDriver: config.StoreMemory}, logging.NewNop())
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	if _, err := NewHTTPServer(c); err == nil {
		t.Fatalf("expected an error for an empty addr")
	}
}
