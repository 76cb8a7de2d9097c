package main

import (
	"os"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func main() {
	logger := logging.NewJSONWriter(os.Stderr, logging.LevelInfo).Named("migration")
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(openMigrator, logger, os.Stdout).Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
