package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// GetPlanQuery fetches one stored plan by id or, when ID is empty, the
// most recent plan for an event name.
type GetPlanQuery struct {
	ID        string
	EventName string
}

// PlanView is the read model returned for a stored plan.
type PlanView struct {
	ID          string                   `json:"id"`
	EventName   string                   `json:"event_name"`
	Anchor      domain.EventAnchor       `json:"anchor"`
	Fingerprint string                   `json:"fingerprint"`
	Result      *domain.ExtendedTaskList `json:"result,omitempty"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

// GetPlanHandler resolves plan lookups.
type GetPlanHandler struct {
	repo   domain.PlanRepository
	logger *slog.Logger
}

// NewGetPlanHandler creates the handler.
func NewGetPlanHandler(repo domain.PlanRepository, logger *slog.Logger) *GetPlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetPlanHandler{repo: repo, logger: logger}
}

// Handle executes the query.
func (h *GetPlanHandler) Handle(ctx context.Context, query GetPlanQuery) (*PlanView, error) {
	plan, err := h.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return newPlanView(plan), nil
}

func (h *GetPlanHandler) resolve(ctx context.Context, query GetPlanQuery) (*domain.EventPlan, error) {
	if query.ID != "" {
		id, err := uuid.Parse(query.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid plan id %q: %w", query.ID, err)
		}
		return h.repo.FindByID(ctx, id)
	}
	if query.EventName != "" {
		return h.repo.FindByEventName(ctx, query.EventName)
	}
	return nil, errors.New("either a plan id or an event name is required")
}

func newPlanView(plan *domain.EventPlan) *PlanView {
	return &PlanView{
		ID:          plan.ID().String(),
		EventName:   plan.EventName(),
		Anchor:      plan.Anchor(),
		Fingerprint: plan.Fingerprint(),
		Result:      plan.Result(),
		CreatedAt:   plan.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:   plan.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

// ListPlansQuery lists all stored plans.
type ListPlansQuery struct{}

// ListPlansHandler returns summaries of every stored plan.
type ListPlansHandler struct {
	repo   domain.PlanRepository
	logger *slog.Logger
}

// NewListPlansHandler creates the handler.
func NewListPlansHandler(repo domain.PlanRepository, logger *slog.Logger) *ListPlansHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListPlansHandler{repo: repo, logger: logger}
}

// Handle executes the query.
func (h *ListPlansHandler) Handle(ctx context.Context, _ ListPlansQuery) ([]*PlanView, error) {
	plans, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*PlanView, 0, len(plans))
	for _, plan := range plans {
		views = append(views, newPlanView(plan))
	}
	return views, nil
}
