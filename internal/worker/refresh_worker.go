package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/resale-admin/internal/service"
)

// StartRefreshWorker periodically reloads the snapshot so the console
// tracks edits made by other operators. A zero interval disables the
// worker; explicit refresh stays available either way.
func StartRefreshWorker(ctx context.Context, consoleService *service.ConsoleService, interval time.Duration, logger *zap.Logger) {
	if consoleService == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := consoleService.Refresh(ctx); err != nil {
					logger.Warn("background refresh failed", zap.Error(err))
				}
			}
		}
	}()
}
