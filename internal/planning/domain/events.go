package domain

import (
	sharedDomain "github.com/felixgeelhaar/gala/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "EventPlan"

	RoutingKeyPlanComputed      = "planning.plan.computed"
	RoutingKeyConflictsDetected = "planning.plan.conflicts_detected"
)

// PlanComputed is emitted when a pipeline run completes for a plan.
type PlanComputed struct {
	sharedDomain.BaseEvent
	EventName   string            `json:"event_name"`
	Fingerprint string            `json:"fingerprint"`
	Summary     ProcessingSummary `json:"summary"`
}

// NewPlanComputed creates a PlanComputed event.
func NewPlanComputed(planID uuid.UUID, eventName, fingerprint string, summary ProcessingSummary) PlanComputed {
	return PlanComputed{
		BaseEvent:   sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeyPlanComputed),
		EventName:   eventName,
		Fingerprint: fingerprint,
		Summary:     summary,
	}
}

// ConflictsDetected is emitted when a run produced at least one conflict.
type ConflictsDetected struct {
	sharedDomain.BaseEvent
	EventName string           `json:"event_name"`
	Conflicts []ConflictRecord `json:"conflicts"`
}

// NewConflictsDetected creates a ConflictsDetected event.
func NewConflictsDetected(planID uuid.UUID, eventName string, conflicts []ConflictRecord) ConflictsDetected {
	return ConflictsDetected{
		BaseEvent: sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeyConflictsDetected),
		EventName: eventName,
		Conflicts: conflicts,
	}
}
