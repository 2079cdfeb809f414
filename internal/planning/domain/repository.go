package domain

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository defines persistence operations for event plans.
// Persistence is an external concern; the engine itself never touches a
// repository mid-run.
type PlanRepository interface {
	// Save persists a plan and its result.
	Save(ctx context.Context, plan *EventPlan) error

	// FindByID retrieves a plan by its ID. Returns (nil, nil) when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*EventPlan, error)

	// FindByEventName retrieves the most recent plan for an event name.
	FindByEventName(ctx context.Context, eventName string) (*EventPlan, error)

	// List returns all stored plans ordered by creation time descending.
	List(ctx context.Context) ([]*EventPlan, error)

	// Delete removes a plan.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanCache caches computed results keyed by input fingerprint. A cache
// failure must degrade to a miss, never fail a run.
type PlanCache interface {
	Get(ctx context.Context, fingerprint string) (*ExtendedTaskList, bool)
	Set(ctx context.Context, fingerprint string, result *ExtendedTaskList)
}
