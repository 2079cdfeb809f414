package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// ErrUnknownSeverity reports a severity filter value outside
// low/medium/high/critical.
var ErrUnknownSeverity = errors.New("unknown severity")

// ListConflictsQuery fetches the conflicts of a stored plan, optionally
// filtered by minimum severity.
type ListConflictsQuery struct {
	ID          string
	EventName   string
	MinSeverity string
}

// ListConflictsHandler reads conflicts off stored plan results.
type ListConflictsHandler struct {
	plans  *GetPlanHandler
	logger *slog.Logger
}

// NewListConflictsHandler creates the handler.
func NewListConflictsHandler(plans *GetPlanHandler, logger *slog.Logger) *ListConflictsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListConflictsHandler{plans: plans, logger: logger}
}

var severityOrder = map[string]int{
	"low":      0,
	"medium":   1,
	"high":     2,
	"critical": 3,
}

// Handle executes the query. Conflicts keep their stored order, which is
// already severity-first.
func (h *ListConflictsHandler) Handle(ctx context.Context, query ListConflictsQuery) ([]domain.ConflictRecord, error) {
	view, err := h.plans.Handle(ctx, GetPlanQuery{ID: query.ID, EventName: query.EventName})
	if err != nil {
		return nil, err
	}
	if view.Result == nil {
		return nil, nil
	}

	floor := 0
	filtered := false
	if query.MinSeverity != "" {
		f, ok := severityOrder[query.MinSeverity]
		if !ok {
			return nil, fmt.Errorf("%w %q: expected one of low, medium, high, critical", ErrUnknownSeverity, query.MinSeverity)
		}
		floor, filtered = f, true
	}
	out := make([]domain.ConflictRecord, 0, len(view.Result.Conflicts))
	for _, c := range view.Result.Conflicts {
		if filtered && severityOrder[c.Severity] < floor {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
