package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"jobherald/internal/domain"
)

// Source queries the external listings provider.
type Source interface {
	SearchPostings(ctx context.Context, q domain.SearchQuery) ([]domain.Posting, error)
}

// SeenStore is the persistent identity store.
type SeenStore interface {
	HasSeen(ctx context.Context, category, identity string) (bool, error)
	MarkSeen(ctx context.Context, category string, rec domain.SeenRecord) error
}

// Evaluator decides whether a posting is relevant to a category.
type Evaluator interface {
	Evaluate(ctx context.Context, p domain.Posting, policy domain.CategoryPolicy) domain.Decision
}

// Announcer delivers one posting announcement to a channel.
type Announcer interface {
	Announce(ctx context.Context, chatID int64, p domain.Posting) error
}

// FanOut mirrors announced postings to a secondary feed. Optional.
type FanOut interface {
	Publish(ctx context.Context, category string, p domain.Posting) error
}
