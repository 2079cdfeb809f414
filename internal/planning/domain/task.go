package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTaskID     = errors.New("task id cannot be empty")
	ErrDuplicateTask   = errors.New("duplicate task id")
	ErrInvalidQuantity = errors.New("resource quantity must be positive")
)

// TaskID is the stable identifier of a task within a plan.
//
// Tasks are referenced by id only (dependencies, parents, children); the
// graph arena owns the entities.
type TaskID string

// PriorityLevel represents task urgency.
type PriorityLevel int

const (
	PriorityLow PriorityLevel = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var ErrInvalidPriority = errors.New("invalid priority level")

var priorityNames = map[PriorityLevel]string{
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

var priorityValues = map[string]PriorityLevel{
	"low":      PriorityLow,
	"medium":   PriorityMedium,
	"high":     PriorityHigh,
	"critical": PriorityCritical,
}

// ParsePriorityLevel creates a PriorityLevel from a string.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	p, ok := priorityValues[strings.ToLower(s)]
	if !ok {
		return PriorityMedium, ErrInvalidPriority
	}
	return p, nil
}

// String returns the string representation of the priority.
func (p PriorityLevel) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a known value.
func (p PriorityLevel) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Weight returns a numeric weight for sorting (higher = more important).
func (p PriorityLevel) Weight() int { return int(p) }

// ResourceType classifies a resource requirement.
type ResourceType string

const (
	ResourceVendor    ResourceType = "vendor"
	ResourceEquipment ResourceType = "equipment"
	ResourcePersonnel ResourceType = "personnel"
	ResourceVenue     ResourceType = "venue"
)

// ResourceRequirement describes one resource a task needs for its window.
type ResourceRequirement struct {
	Type                   ResourceType `json:"type"`
	Quantity               int          `json:"quantity"`
	AvailabilityConstraint string       `json:"availability_constraint,omitempty"`
}

// SchedulingPolicy selects how slack is used for tasks without dependencies.
type SchedulingPolicy string

const (
	// PolicyASAP schedules at the start of the planning window.
	PolicyASAP SchedulingPolicy = "asap"
	// PolicyALAP schedules as late as possible before the event anchor.
	PolicyALAP SchedulingPolicy = "alap"
)

// StatusFlags summarizes per-task processing outcomes.
type StatusFlags struct {
	HasErrors            bool `json:"has_errors"`
	HasWarnings          bool `json:"has_warnings"`
	RequiresManualReview bool `json:"requires_manual_review"`
}

// Task is the central planning entity. It is created by the graph builder
// and annotated by the later pipeline stages; each stage works on its own
// copy of the graph, so a stage never mutates its predecessor's view.
type Task struct {
	id          TaskID
	name        string
	description string

	priorityLevel    PriorityLevel
	priorityScore    float64
	granularityLevel int
	parentID         TaskID
	childIDs         []TaskID

	estimatedDuration time.Duration
	dependencyIDs     []TaskID
	requirements      []ResourceRequirement
	policy            SchedulingPolicy

	schedule    *TaskSchedule
	assignments []VendorAssignment
	conflictIDs []uuid.UUID
	venueInfo   string
	flags       StatusFlags
	messages    []string
}

// NewTask creates a task with defaults: medium priority, top-level
// granularity, ASAP policy.
func NewTask(id TaskID, name string) (*Task, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrEmptyTaskID
	}
	if strings.TrimSpace(name) == "" {
		name = string(id)
	}
	return &Task{
		id:            id,
		name:          name,
		priorityLevel: PriorityMedium,
		policy:        PolicyASAP,
	}, nil
}

// Getters

func (t *Task) ID() TaskID                          { return t.id }
func (t *Task) Name() string                        { return t.name }
func (t *Task) Description() string                 { return t.description }
func (t *Task) PriorityLevel() PriorityLevel        { return t.priorityLevel }
func (t *Task) PriorityScore() float64              { return t.priorityScore }
func (t *Task) GranularityLevel() int               { return t.granularityLevel }
func (t *Task) ParentID() TaskID                    { return t.parentID }
func (t *Task) EstimatedDuration() time.Duration    { return t.estimatedDuration }
func (t *Task) Policy() SchedulingPolicy            { return t.policy }
func (t *Task) Schedule() *TaskSchedule             { return t.schedule }
func (t *Task) Assignments() []VendorAssignment     { return t.assignments }
func (t *Task) ConflictIDs() []uuid.UUID            { return t.conflictIDs }
func (t *Task) VenueInfo() string                   { return t.venueInfo }
func (t *Task) Flags() StatusFlags                  { return t.flags }
func (t *Task) Messages() []string                  { return t.messages }
func (t *Task) Requirements() []ResourceRequirement { return t.requirements }

// ChildIDs returns the derived, ordered child ids.
func (t *Task) ChildIDs() []TaskID {
	out := make([]TaskID, len(t.childIDs))
	copy(out, t.childIDs)
	return out
}

// DependencyIDs returns the sorted set of prerequisite task ids.
func (t *Task) DependencyIDs() []TaskID {
	out := make([]TaskID, len(t.dependencyIDs))
	copy(out, t.dependencyIDs)
	return out
}

// DependsOn reports whether id is a direct prerequisite of this task.
func (t *Task) DependsOn(id TaskID) bool {
	for _, d := range t.dependencyIDs {
		if d == id {
			return true
		}
	}
	return false
}

// Setters used by the graph builder.

func (t *Task) SetDescription(description string) { t.description = description }

func (t *Task) SetPriority(level PriorityLevel, score float64) {
	t.priorityLevel = level
	t.priorityScore = score
}

func (t *Task) SetGranularity(level int, parentID TaskID) {
	if level < 0 {
		level = 0
	}
	t.granularityLevel = level
	t.parentID = parentID
}

func (t *Task) SetEstimatedDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.estimatedDuration = d
}

func (t *Task) SetPolicy(p SchedulingPolicy) { t.policy = p }

// AddDependency records a prerequisite, keeping the set sorted and
// duplicate-free.
func (t *Task) AddDependency(id TaskID) {
	if id == t.id || t.DependsOn(id) {
		return
	}
	t.dependencyIDs = append(t.dependencyIDs, id)
	sort.Slice(t.dependencyIDs, func(i, j int) bool { return t.dependencyIDs[i] < t.dependencyIDs[j] })
}

// RemoveDependency drops a prerequisite edge (used when pruning dangling
// references).
func (t *Task) RemoveDependency(id TaskID) {
	for i, d := range t.dependencyIDs {
		if d == id {
			t.dependencyIDs = append(t.dependencyIDs[:i], t.dependencyIDs[i+1:]...)
			return
		}
	}
}

// ClearParent drops the parent reference.
func (t *Task) ClearParent() { t.parentID = "" }

// AddRequirement appends a resource requirement, preserving feed order.
func (t *Task) AddRequirement(r ResourceRequirement) error {
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	t.requirements = append(t.requirements, r)
	return nil
}

// Annotations applied by later stages.

// AttachSchedule records the computed schedule for this task.
func (t *Task) AttachSchedule(s *TaskSchedule) { t.schedule = s }

// AddAssignment records a vendor assignment.
func (t *Task) AddAssignment(a VendorAssignment) {
	t.assignments = append(t.assignments, a)
	if a.RequiresManualAssignment {
		t.flags.RequiresManualReview = true
	}
}

// SetVenueInfo records the assigned venue description.
func (t *Task) SetVenueInfo(info string) { t.venueInfo = info }

// AddConflict links a conflict record to this task.
func (t *Task) AddConflict(id uuid.UUID) {
	t.conflictIDs = append(t.conflictIDs, id)
	t.flags.HasWarnings = true
}

// AddWarning records a recoverable issue on this task.
func (t *Task) AddWarning(msg string) {
	t.messages = append(t.messages, msg)
	t.flags.HasWarnings = true
}

// AddError records a hard per-task error; the run continues, the task is
// flagged.
func (t *Task) AddError(msg string) {
	t.messages = append(t.messages, msg)
	t.flags.HasErrors = true
}

// RequireManualReview flags the task for human follow-up.
func (t *Task) RequireManualReview() { t.flags.RequiresManualReview = true }

func (t *Task) setChildIDs(ids []TaskID) { t.childIDs = ids }

// Clone returns a deep copy of the task. Stages clone the graph before
// annotating so prior stage output stays auditable.
func (t *Task) Clone() *Task {
	dup := *t
	dup.childIDs = append([]TaskID(nil), t.childIDs...)
	dup.dependencyIDs = append([]TaskID(nil), t.dependencyIDs...)
	dup.requirements = append([]ResourceRequirement(nil), t.requirements...)
	dup.assignments = append([]VendorAssignment(nil), t.assignments...)
	dup.conflictIDs = append([]uuid.UUID(nil), t.conflictIDs...)
	dup.messages = append([]string(nil), t.messages...)
	if t.schedule != nil {
		s := t.schedule.Clone()
		dup.schedule = s
	}
	return &dup
}
