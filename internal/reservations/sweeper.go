package reservations

import (
	"context"
	"time"

	"cinebook/pkg/logger"
)

// Sweeper periodically releases stale holds. Expiry is also applied lazily
// when competing holds claim lapsed seats, so the sweeper only bounds how
// long released inventory stays invisible.
type Sweeper struct {
	service  Service
	interval time.Duration
	logger   *logger.Logger
}

func NewSweeper(service Service, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   log,
	}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			released, err := s.service.ExpireStaleHolds(ctx)
			if err != nil {
				s.logger.Error("hold sweep failed", "error", err)
				continue
			}
			if released > 0 {
				s.logger.Info("hold sweep released stale holds", "count", released)
			}
		}
	}
}
