package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobherald/internal/domain"
)

type fakeHarvester struct {
	mu       sync.Mutex
	calls    []string
	failing  map[string]bool
	maxCalls int
	cancel   context.CancelFunc
}

func (f *fakeHarvester) HarvestCategory(_ context.Context, cat *domain.Category) (*domain.HarvestStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, cat.Name)
	if len(f.calls) >= f.maxCalls {
		f.cancel()
	}

	if f.failing[cat.Name] {
		return nil, errors.New("provider unavailable")
	}
	return &domain.HarvestStats{Category: cat.Name, Published: 1}, nil
}

func testCategories() []*domain.Category {
	return []*domain.Category{
		{Name: "full_time", ChannelID: 1, SearchTerms: []string{"software engineer"}},
		{Name: "ng_2025", ChannelID: 2, SearchTerms: []string{"term a", "term b", "term c"}},
	}
}

func runScheduler(t *testing.T, harvester *fakeHarvester, categories []*domain.Category) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	harvester.cancel = cancel

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := NewScheduler(harvester, categories, time.Millisecond, time.Second, logger)

	err := sched.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_RoundRobinOrder(t *testing.T) {
	categories := testCategories()
	harvester := &fakeHarvester{maxCalls: 4}

	runScheduler(t, harvester, categories)

	assert.Equal(t, []string{"full_time", "ng_2025", "full_time", "ng_2025"}, harvester.calls)
}

func TestScheduler_ProviderErrorDoesNotBlockOtherCategories(t *testing.T) {
	categories := testCategories()
	harvester := &fakeHarvester{
		maxCalls: 4,
		failing:  map[string]bool{"full_time": true},
	}

	runScheduler(t, harvester, categories)

	// The failing category is retried each cycle and ng_2025 still harvests.
	assert.Equal(t, []string{"full_time", "ng_2025", "full_time", "ng_2025"}, harvester.calls)
}

func TestScheduler_AdvancesRotationAfterEveryHarvest(t *testing.T) {
	categories := testCategories()
	harvester := &fakeHarvester{maxCalls: 4}

	runScheduler(t, harvester, categories)

	// Two cycles: the single-term category wraps back to 0, the three-term
	// category sits at its third term.
	assert.Equal(t, 0, categories[0].Rotation.Index())
	assert.Equal(t, 2, categories[1].Rotation.Index())
}

func TestScheduler_CountsPublishedAndFailures(t *testing.T) {
	harvester := &fakeHarvester{
		maxCalls: 4,
		failing:  map[string]bool{"ng_2025": true},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	harvester.cancel = cancel

	sched := NewScheduler(harvester, testCategories(), time.Millisecond, time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, sched.Start(ctx), context.Canceled)

	snap := sched.Snapshot()
	assert.Equal(t, uint64(2), snap.Published)
	assert.Equal(t, uint64(2), snap.Failures)
}
