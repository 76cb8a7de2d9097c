package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// RunLinker processes pending news once immediately and then on every tick
// until ctx is done. Failed runs are logged and retried on the next tick.
func (c *Container) RunLinker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logger := c.Logger.Named("linker-loop")
	logger.Info("background linker started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.runLinkerOnce(ctx)
		select {
		case <-ctx.Done():
			logger.Info("background linker stopped")
			return
		case <-ticker.C:
		}
	}
}

func (c *Container) runLinkerOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := c.Linker.ProcessPending(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.Logger.ErrorContext(ctx, "background linker run failed", "error", err)
		return
	}
	if result.Processed+result.Errors+result.Skipped > 0 {
		c.Logger.InfoContext(ctx, "background linker run done",
			"processed", result.Processed,
			"updated_players", result.UpdatedPlayers,
			"errors", result.Errors,
			"skipped", result.Skipped,
		)
	}
}
