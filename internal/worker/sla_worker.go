package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk/internal/service"
)

// Sweeper runs one escalation sweep as of now.
type Sweeper interface {
	Run(ctx context.Context, now time.Time) (service.EscalationResult, error)
}

// StartSLAWorker runs sweeper every interval until ctx is cancelled. The
// returned channel closes once the loop has exited. A non-positive interval
// starts nothing.
func StartSLAWorker(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("sla worker started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("sla worker stopped")
				return
			case tick := <-ticker.C:
				result, err := sweeper.Run(ctx, tick.UTC())
				if err != nil {
					logger.Error("sla sweep failed", zap.Error(err))
					continue
				}
				if result.Count() > 0 {
					logger.Info("sla sweep escalated tickets", zap.Strings("ticket_ids", result.Escalated))
				}
			}
		}
	}()
	return done
}
