package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/gala/internal/planning/application/services"
	"github.com/felixgeelhaar/gala/internal/planning/domain"
	"github.com/felixgeelhaar/gala/internal/shared/infrastructure/eventbus"
)

// PlanEventCommand requests a full planning run for one event.
type PlanEventCommand struct {
	EventName string
	Inputs    domain.PlanInputs
}

// PlanEventResult carries the persisted plan and its computed output.
type PlanEventResult struct {
	PlanID    string
	FromCache bool
	Result    *domain.ExtendedTaskList
}

// PlanEventHandler runs the pipeline for an event, persists the plan and
// publishes the resulting domain events. Results are cached by input
// fingerprint; identical inputs reuse the cached output.
type PlanEventHandler struct {
	pipeline  *services.Pipeline
	repo      domain.PlanRepository
	cache     domain.PlanCache
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPlanEventHandler creates the handler.
func NewPlanEventHandler(
	pipeline *services.Pipeline,
	repo domain.PlanRepository,
	cache domain.PlanCache,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *PlanEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanEventHandler{
		pipeline:  pipeline,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the command.
func (h *PlanEventHandler) Handle(ctx context.Context, cmd PlanEventCommand) (*PlanEventResult, error) {
	plan, err := domain.NewEventPlan(cmd.EventName, cmd.Inputs.Anchor)
	if err != nil {
		return nil, err
	}

	fingerprint := cmd.Inputs.Fingerprint()

	var result *domain.ExtendedTaskList
	fromCache := false
	if h.cache != nil && fingerprint != "" {
		if cached, ok := h.cache.Get(ctx, fingerprint); ok {
			result = cached
			fromCache = true
			h.logger.Debug("plan result served from cache",
				"event_name", cmd.EventName,
				"fingerprint", fingerprint,
			)
		}
	}

	if result == nil {
		result, err = h.pipeline.Run(ctx, cmd.Inputs)
		if err != nil {
			return nil, fmt.Errorf("planning run for %q: %w", cmd.EventName, err)
		}
	}

	if err := plan.AttachResult(result, fingerprint); err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("saving plan for %q: %w", cmd.EventName, err)
	}

	for _, event := range plan.DomainEvents() {
		if err := eventbus.PublishDomainEvent(ctx, h.publisher, event); err != nil {
			// Event delivery is best-effort; the plan itself is saved.
			h.logger.Error("failed to publish domain event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
		}
	}
	plan.ClearDomainEvents()

	if h.cache != nil && !fromCache && fingerprint != "" {
		h.cache.Set(ctx, fingerprint, result)
	}

	h.logger.Info("event plan computed",
		"event_name", cmd.EventName,
		"plan_id", plan.ID(),
		"tasks", result.Summary.TotalTasks,
		"conflicts", len(result.Conflicts),
		"from_cache", fromCache,
	)

	return &PlanEventResult{
		PlanID:    plan.ID().String(),
		FromCache: fromCache,
		Result:    result,
	}, nil
}
