// Package scheduler drives the harvest loop: categories in round-robin
// order, one at a time, with cooldown pacing between them to respect the
// listings provider's rate limits.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"jobherald/internal/domain"
)

// Harvester runs one category harvest.
type Harvester interface {
	HarvestCategory(ctx context.Context, cat *domain.Category) (*domain.HarvestStats, error)
}

// Scheduler owns the rotation state of every category: terms advance only
// here, between harvests, so the single loop goroutine is the sole writer.
type Scheduler struct {
	harvester       Harvester
	categories      []*domain.Category
	cooldown        time.Duration
	categoryTimeout time.Duration
	logger          *slog.Logger

	cycles    atomic.Uint64
	published atomic.Uint64
	failures  atomic.Uint64
}

func NewScheduler(
	harvester Harvester,
	categories []*domain.Category,
	cooldown time.Duration,
	categoryTimeout time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		harvester:       harvester,
		categories:      categories,
		cooldown:        cooldown,
		categoryTimeout: categoryTimeout,
		logger:          logger,
	}
}

// Start loops until ctx is cancelled. A failed harvest is logged and scoped
// to its category's slot in the cycle; the loop always reaches the next
// category.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"categories", len(s.categories),
		"cooldown", s.cooldown,
	)

	for {
		for _, cat := range s.categories {
			s.runHarvest(ctx, cat)
			cat.Rotation.Advance(len(cat.SearchTerms))

			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return ctx.Err()
			case <-time.After(s.cooldown):
			}
		}

		s.cycles.Add(1)
		s.logger.Info("harvest cycle completed", "cycles", s.cycles.Load())
	}
}

func (s *Scheduler) runHarvest(ctx context.Context, cat *domain.Category) {
	harvestCtx, cancel := context.WithTimeout(ctx, s.categoryTimeout)
	defer cancel()

	stats, err := s.harvester.HarvestCategory(harvestCtx, cat)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("harvest failed, treating as empty cycle",
			"category", cat.Name,
			"search_term", cat.Rotation.Current(cat.SearchTerms),
			"error", err,
		)
		return
	}

	s.published.Add(uint64(stats.Published))
}

// Snapshot is a point-in-time view of the loop's counters, read by the
// heartbeat from its own goroutine.
type Snapshot struct {
	Cycles    uint64
	Published uint64
	Failures  uint64
}

func (s *Scheduler) Snapshot() Snapshot {
	return Snapshot{
		Cycles:    s.cycles.Load(),
		Published: s.published.Load(),
		Failures:  s.failures.Load(),
	}
}
