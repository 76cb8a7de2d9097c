package main

import (
	"context"
	"fmt"
	"os"

	"github.com/felixbhw/n17-dash/cmd/newslinker/commands"
	"github.com/felixbhw/n17-dash/internal/app"
	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

func main() {
	build := func(ctx context.Context) (*app.Container, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel)
		logging.SetDefault(logger)
		return app.New(ctx, cfg, logger)
	}

	if err := commands.NewRoot(build, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
