package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/gala/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyEventName = errors.New("event name cannot be empty")
	ErrNoResult       = errors.New("plan has no computed result")
)

// EventPlan is the aggregate root for one planned event: the anchor, the
// input fingerprint and the computed result.
type EventPlan struct {
	sharedDomain.BaseAggregateRoot
	eventName   string
	anchor      EventAnchor
	fingerprint string
	result      *ExtendedTaskList
}

// NewEventPlan creates a plan for an event.
func NewEventPlan(eventName string, anchor EventAnchor) (*EventPlan, error) {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return nil, ErrEmptyEventName
	}
	return &EventPlan{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		eventName:         eventName,
		anchor:            anchor,
	}, nil
}

func (p *EventPlan) EventName() string         { return p.eventName }
func (p *EventPlan) Anchor() EventAnchor       { return p.anchor }
func (p *EventPlan) Fingerprint() string       { return p.fingerprint }
func (p *EventPlan) Result() *ExtendedTaskList { return p.result }

// HasResult reports whether a pipeline run has been attached.
func (p *EventPlan) HasResult() bool { return p.result != nil }

// AttachResult records a completed pipeline run on the plan and emits the
// corresponding domain events.
func (p *EventPlan) AttachResult(result *ExtendedTaskList, fingerprint string) error {
	if result == nil {
		return ErrNoResult
	}
	p.result = result
	p.fingerprint = fingerprint
	p.Touch()

	p.AddDomainEvent(NewPlanComputed(p.ID(), p.eventName, fingerprint, result.Summary))
	if len(result.Conflicts) > 0 {
		p.AddDomainEvent(NewConflictsDetected(p.ID(), p.eventName, result.Conflicts))
	}
	return nil
}

// RehydratePlan recreates a plan from persisted state.
func RehydratePlan(
	id uuid.UUID,
	eventName string,
	anchor EventAnchor,
	fingerprint string,
	result *ExtendedTaskList,
	createdAt, updatedAt time.Time,
) *EventPlan {
	entity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &EventPlan{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(entity),
		eventName:         eventName,
		anchor:            anchor,
		fingerprint:       fingerprint,
		result:            result,
	}
}
