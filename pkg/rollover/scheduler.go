package rollover

import (
	"context"
	"time"

	"github.com/envelope-zero/ledger/internal/types"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is the default interval for month boundary checks.
const DefaultInterval = time.Minute

// Scheduler materializes piggybank contributions when a new month begins.
type Scheduler struct {
	service  *Service
	interval time.Duration
	now      func() time.Time
	last     types.Month
}

// NewScheduler creates a scheduler that checks for a new month on every interval.
// If now is nil, time.Now is used.
func NewScheduler(service *Service, interval time.Duration, now func() time.Time) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		service:  service,
		interval: interval,
		now:      now,
	}
}

// Run checks for a new month once immediately and then on every interval
// until the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Str("component", "scheduler").Dur("interval", s.interval).Msg("starting rollover scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "scheduler").Msg("stopping rollover scheduler")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick materializes the contributions for the current month if that has not
// been done successfully yet. It returns the number of created transactions.
func (s *Scheduler) Tick(ctx context.Context) int {
	month := types.MonthOf(s.now())
	if month.Equal(s.last) {
		return 0
	}

	created, err := s.service.MaterializeContributions(ctx, month)
	if err != nil {
		log.Error().Str("component", "scheduler").Str("month", month.String()).Err(err).Msg("materializing contributions failed, retrying on next tick")
		return created
	}

	s.last = month
	return created
}
