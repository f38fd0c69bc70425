package otc

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically clears expired entries from a Store. Only the
// memory store needs one; Redis expires keys on its own.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper constructs a sweeper. A non-positive interval falls back to
// one minute.
func NewSweeper(store Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps on a ticker until ctx is cancelled. A failed round is
// logged and the loop keeps sweeping.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := s.store.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				s.logger.WarnContext(ctx, "one-time code sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.InfoContext(ctx, "swept expired one-time codes", "removed", removed)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
