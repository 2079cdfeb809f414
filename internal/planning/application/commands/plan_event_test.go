package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/planning/application/commands"
	"github.com/felixgeelhaar/gala/internal/planning/application/services"
	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*domain.EventPlan
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{plans: make(map[uuid.UUID]*domain.EventPlan)}
}

func (r *memoryRepo) Save(ctx context.Context, plan *domain.EventPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID()] = plan
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plans[id], nil
}

func (r *memoryRepo) FindByEventName(ctx context.Context, name string) (*domain.EventPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.EventPlan
	for _, p := range r.plans {
		if p.EventName() != name {
			continue
		}
		if latest == nil || p.CreatedAt().After(latest.CreatedAt()) {
			latest = p
		}
	}
	return latest, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]*domain.EventPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.EventPlan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, id)
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*domain.ExtendedTaskList
	hits    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*domain.ExtendedTaskList)}
}

func (c *memoryCache) Get(ctx context.Context, fingerprint string) (*domain.ExtendedTaskList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[fingerprint]
	if ok {
		c.hits++
	}
	return result, ok
}

func (c *memoryCache) Set(ctx context.Context, fingerprint string, result *domain.ExtendedTaskList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = result
	c.sets++
}

type recordingPublisher struct {
	mu          sync.Mutex
	routingKeys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testInputs() domain.PlanInputs {
	eventDate := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	return domain.PlanInputs{
		Feeds: domain.TaskAttributeFeeds{
			Priority: map[domain.TaskID]domain.PriorityFeedEntry{
				"setup":    {Name: "Setup", PriorityLevel: "high", PriorityScore: 80},
				"teardown": {Name: "Teardown", PriorityLevel: "low", PriorityScore: 10},
			},
			Dependency: map[domain.TaskID]domain.DependencyFeedEntry{
				"setup": {EstimatedDuration: 4 * time.Hour, SchedulingPolicy: domain.PolicyASAP},
				"teardown": {
					DependencyIDs:     []domain.TaskID{"setup"},
					EstimatedDuration: 2 * time.Hour,
					SchedulingPolicy:  domain.PolicyASAP,
				},
			},
		},
		Anchor: domain.EventAnchor{EventDate: eventDate},
	}
}

func newHandler(repo *memoryRepo, cache *memoryCache, publisher *recordingPublisher) *commands.PlanEventHandler {
	return commands.NewPlanEventHandler(
		services.NewDefaultPipeline(discardLogger()),
		repo,
		cache,
		publisher,
		discardLogger(),
	)
}

func TestPlanEventHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("computes persists and publishes", func(t *testing.T) {
		repo := newMemoryRepo()
		cache := newMemoryCache()
		publisher := &recordingPublisher{}
		handler := newHandler(repo, cache, publisher)

		out, err := handler.Handle(ctx, commands.PlanEventCommand{
			EventName: "Summer Gala",
			Inputs:    testInputs(),
		})
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.False(t, out.FromCache)
		assert.Equal(t, 2, out.Result.Summary.TotalTasks)

		saved, err := repo.FindByEventName(ctx, "Summer Gala")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.HasResult())
		assert.Empty(t, saved.DomainEvents(), "events cleared after publishing")

		assert.Contains(t, publisher.routingKeys, domain.RoutingKeyPlanComputed)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("identical inputs hit the cache", func(t *testing.T) {
		repo := newMemoryRepo()
		cache := newMemoryCache()
		publisher := &recordingPublisher{}
		handler := newHandler(repo, cache, publisher)

		first, err := handler.Handle(ctx, commands.PlanEventCommand{EventName: "Gala", Inputs: testInputs()})
		require.NoError(t, err)
		second, err := handler.Handle(ctx, commands.PlanEventCommand{EventName: "Gala", Inputs: testInputs()})
		require.NoError(t, err)

		assert.False(t, first.FromCache)
		assert.True(t, second.FromCache)
		assert.Equal(t, 1, cache.hits)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("empty event name is rejected", func(t *testing.T) {
		handler := newHandler(newMemoryRepo(), newMemoryCache(), &recordingPublisher{})

		_, err := handler.Handle(ctx, commands.PlanEventCommand{EventName: "  ", Inputs: testInputs()})
		assert.ErrorIs(t, err, domain.ErrEmptyEventName)
	})

	t.Run("cycle surfaces as a fatal error", func(t *testing.T) {
		handler := newHandler(newMemoryRepo(), newMemoryCache(), &recordingPublisher{})

		inputs := testInputs()
		entry := inputs.Feeds.Dependency["setup"]
		entry.DependencyIDs = []domain.TaskID{"teardown"}
		inputs.Feeds.Dependency["setup"] = entry

		_, err := handler.Handle(ctx, commands.PlanEventCommand{EventName: "Gala", Inputs: inputs})
		var cerr *domain.CycleError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("nil cache is tolerated", func(t *testing.T) {
		repo := newMemoryRepo()
		publisher := &recordingPublisher{}
		handler := commands.NewPlanEventHandler(
			services.NewDefaultPipeline(discardLogger()),
			repo,
			nil,
			publisher,
			discardLogger(),
		)

		out, err := handler.Handle(ctx, commands.PlanEventCommand{EventName: "Gala", Inputs: testInputs()})
		require.NoError(t, err)
		assert.False(t, out.FromCache)
	})
}
