package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/securebank-labs/securebank/internal/service"
)

// RequestExpirySweeper periodically flips pending access requests past
// their deadline to expired. The decision path also expires lazily, so the
// sweeper only bounds how long a stale pending row stays visible.
type RequestExpirySweeper struct {
	access   service.AccessDelegator
	logger   *slog.Logger
	interval time.Duration
}

// NewRequestExpirySweeper creates a RequestExpirySweeper
func NewRequestExpirySweeper(access service.AccessDelegator, logger *slog.Logger, interval time.Duration) *RequestExpirySweeper {
	return &RequestExpirySweeper{
		access:   access,
		logger:   logger,
		interval: interval,
	}
}

// Run sweeps on every tick until the context is cancelled
func (s *RequestExpirySweeper) Run(ctx context.Context) {
	s.logger.Info("access request expiry sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("access request expiry sweeper stopped")
			return
		case <-ticker.C:
			count, err := s.access.SweepExpired(ctx)
			if err != nil {
				s.logger.Error("failed to expire pending access requests", "error", err)
				continue
			}
			if count > 0 {
				s.logger.Info("expired pending access requests", "count", count)
			}
		}
	}
}
