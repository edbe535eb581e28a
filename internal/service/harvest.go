// Package service orchestrates one category harvest: query the listings
// source, filter through the policy engine, dedup against the seen store,
// and publish what survives.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobherald/internal/domain"
)

type HarvestService struct {
	source    Source
	seen      SeenStore
	engine    Evaluator
	announcer Announcer
	fanout    FanOut // nil disables fan-out
	location  string
	logger    *slog.Logger
}

func NewHarvestService(
	source Source,
	seen SeenStore,
	engine Evaluator,
	announcer Announcer,
	fanout FanOut,
	location string,
	logger *slog.Logger,
) *HarvestService {
	return &HarvestService{
		source:    source,
		seen:      seen,
		engine:    engine,
		announcer: announcer,
		fanout:    fanout,
		location:  location,
		logger:    logger,
	}
}

// HarvestCategory runs one harvest for the category using its current search
// term. A source error aborts only this harvest; the caller logs it and moves
// on to the next category. Per-posting failures are counted and skipped so
// the rest of the batch still processes.
func (s *HarvestService) HarvestCategory(ctx context.Context, cat *domain.Category) (*domain.HarvestStats, error) {
	startTime := time.Now()
	term := cat.Rotation.Current(cat.SearchTerms)
	logger := s.logger.With("category", cat.Name, "search_term", term)

	stats := &domain.HarvestStats{
		Category:   cat.Name,
		SearchTerm: term,
	}

	postings, err := s.source.SearchPostings(ctx, domain.SearchQuery{
		Term:               term,
		Location:           s.location,
		ResultCap:          cat.ResultCap,
		RecencyWindowHours: cat.RecencyHours,
	})
	if err != nil {
		return stats, fmt.Errorf("search postings: %w", err)
	}

	stats.Fetched = len(postings)
	logger.Info("fetched postings", "count", len(postings))

	for i := range postings {
		s.processPosting(ctx, cat, &postings[i], stats, logger)
	}

	stats.Duration = time.Since(startTime)

	logger.Info("harvest completed",
		"fetched", stats.Fetched,
		"rejected", stats.Rejected,
		"duplicates", stats.Duplicates,
		"published", stats.Published,
		"recorded", stats.Recorded,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *HarvestService) processPosting(
	ctx context.Context,
	cat *domain.Category,
	p *domain.Posting,
	stats *domain.HarvestStats,
	logger *slog.Logger,
) {
	decision := s.engine.Evaluate(ctx, *p, cat.Policy)
	if !decision.Accepted {
		stats.Rejected++
		logger.Debug("rejected posting",
			"identity", p.Identity,
			"title", p.Title,
			"company", p.Company,
			"reason", decision.Reason,
		)
		return
	}

	seen, err := s.seen.HasSeen(ctx, cat.Name, p.Identity)
	if err != nil {
		stats.Errors++
		logger.Error("seen check failed",
			"identity", p.Identity,
			"title", p.Title,
			"error", err,
		)
		return
	}
	if seen {
		stats.Duplicates++
		return
	}

	switch cat.CommitMode {
	case domain.RecordThenPublish:
		if !s.record(ctx, cat, p, stats, logger) {
			return
		}
		if !s.announce(ctx, cat, p, stats, logger) {
			// Already recorded: the lost notification is the accepted cost
			// of never re-running the decision for this identity.
			return
		}
	default: // publish-then-record
		if !s.announce(ctx, cat, p, stats, logger) {
			// Not recorded, so the posting stays novel for the next cycle.
			return
		}
		s.record(ctx, cat, p, stats, logger)
	}

	if s.fanout != nil {
		if err := s.fanout.Publish(ctx, cat.Name, *p); err != nil {
			logger.Warn("fan-out failed",
				"identity", p.Identity,
				"error", err,
			)
		}
	}
}

// record commits the identity to the seen store. A conflict means the
// identity is already recorded; it is logged and treated as a duplicate, not
// a failure.
func (s *HarvestService) record(
	ctx context.Context,
	cat *domain.Category,
	p *domain.Posting,
	stats *domain.HarvestStats,
	logger *slog.Logger,
) bool {
	err := s.seen.MarkSeen(ctx, cat.Name, domain.RecordFromPosting(*p))
	if errors.Is(err, domain.ErrAlreadySeen) {
		stats.Duplicates++
		logger.Warn("identity already recorded",
			"identity", p.Identity,
			"title", p.Title,
		)
		return false
	}
	if err != nil {
		stats.Errors++
		logger.Error("mark seen failed",
			"identity", p.Identity,
			"title", p.Title,
			"company", p.Company,
			"error", err,
		)
		return false
	}

	stats.Recorded++
	return true
}

func (s *HarvestService) announce(
	ctx context.Context,
	cat *domain.Category,
	p *domain.Posting,
	stats *domain.HarvestStats,
	logger *slog.Logger,
) bool {
	if err := s.announcer.Announce(ctx, cat.ChannelID, *p); err != nil {
		stats.Errors++
		logger.Error("delivery failed",
			"identity", p.Identity,
			"title", p.Title,
			"company", p.Company,
			"chat_id", cat.ChannelID,
			"error", err,
		)
		return false
	}

	stats.Published++
	logger.Info("published posting",
		"identity", p.Identity,
		"title", p.Title,
		"company", p.Company,
	)
	return true
}
