package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func TestEventPlan(t *testing.T) {
	anchor := domain.EventAnchor{EventDate: time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)}

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := domain.NewEventPlan("   ", anchor)
		assert.ErrorIs(t, err, domain.ErrEmptyEventName)
	})

	t.Run("attach result emits plan computed", func(t *testing.T) {
		plan, err := domain.NewEventPlan("Summer Gala", anchor)
		require.NoError(t, err)
		assert.False(t, plan.HasResult())

		result := &domain.ExtendedTaskList{
			Tasks:   []domain.ExtendedTask{{ID: "setup"}},
			Summary: domain.ProcessingSummary{TotalTasks: 1},
		}
		require.NoError(t, plan.AttachResult(result, "fp-1"))

		assert.True(t, plan.HasResult())
		assert.Equal(t, "fp-1", plan.Fingerprint())

		events := plan.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, domain.RoutingKeyPlanComputed, events[0].RoutingKey())
		assert.Equal(t, domain.AggregateType, events[0].AggregateType())
		assert.Equal(t, plan.ID(), events[0].AggregateID())
	})

	t.Run("conflicts add a second event", func(t *testing.T) {
		plan, err := domain.NewEventPlan("Summer Gala", anchor)
		require.NoError(t, err)

		result := &domain.ExtendedTaskList{
			Tasks: []domain.ExtendedTask{{ID: "a"}, {ID: "b"}},
			Conflicts: []domain.ConflictRecord{
				{ID: uuid.New(), Type: domain.ConflictVenue, Severity: "high", AffectedTaskIDs: []domain.TaskID{"a", "b"}},
			},
			Summary: domain.ProcessingSummary{TotalTasks: 2},
		}
		require.NoError(t, plan.AttachResult(result, "fp-2"))

		events := plan.DomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, domain.RoutingKeyConflictsDetected, events[1].RoutingKey())

		plan.ClearDomainEvents()
		assert.Empty(t, plan.DomainEvents())
	})

	t.Run("nil result rejected", func(t *testing.T) {
		plan, err := domain.NewEventPlan("Gala", anchor)
		require.NoError(t, err)
		assert.ErrorIs(t, plan.AttachResult(nil, "fp"), domain.ErrNoResult)
	})

	t.Run("rehydrate restores state without events", func(t *testing.T) {
		id := uuid.New()
		created := time.Now().UTC().Add(-time.Hour)
		updated := time.Now().UTC()
		result := &domain.ExtendedTaskList{Summary: domain.ProcessingSummary{TotalTasks: 3}}

		plan := domain.RehydratePlan(id, "Gala", anchor, "fp-3", result, created, updated)
		assert.Equal(t, id, plan.ID())
		assert.Equal(t, "Gala", plan.EventName())
		assert.Equal(t, "fp-3", plan.Fingerprint())
		assert.True(t, plan.HasResult())
		assert.Empty(t, plan.DomainEvents())
		assert.Equal(t, created, plan.CreatedAt())
	})
}
