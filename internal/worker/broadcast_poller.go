package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-service/internal/service"
)

// StartBroadcastPoller refreshes active broadcasts on an interval until the
// context is cancelled. The loop only reads; each successful remote read
// reconciles the local cache as a side effect of ListActive.
func StartBroadcastPoller(ctx context.Context, broadcasts *service.BroadcastService, interval time.Duration, logger *zap.Logger) {
	if broadcasts == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lastCount := -1
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				messages, err := broadcasts.ListActive(ctx)
				if err != nil {
					logger.Warn("broadcast poll failed", zap.Error(err))
					continue
				}
				if len(messages) != lastCount {
					logger.Info("active broadcasts refreshed", zap.Int("count", len(messages)))
					lastCount = len(messages)
				}
			}
		}
	}()
}
