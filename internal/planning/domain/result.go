package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageStatus reports how a pipeline stage finished.
type StageStatus string

const (
	StageOK       StageStatus = "ok"
	StageDegraded StageStatus = "degraded"
	StageFailed   StageStatus = "failed"
)

// Stage names used in the processing summary.
const (
	StageGraphBuilder       = "graph_builder"
	StageIntegrityValidator = "integrity_validator"
	StageScheduler          = "scheduler"
	StageConflictDetector   = "conflict_detector"
	StageVendorAssigner     = "vendor_assigner"
	StageResultAssembler    = "result_assembler"
)

// ExtendedTask is the fully annotated, serialization-ready view of one
// task in the final output.
type ExtendedTask struct {
	ID               TaskID                `json:"id"`
	Name             string                `json:"name"`
	Description      string                `json:"description,omitempty"`
	PriorityLevel    string                `json:"priority_level"`
	PriorityScore    float64               `json:"priority_score"`
	GranularityLevel int                   `json:"granularity_level"`
	ParentID         TaskID                `json:"parent_id,omitempty"`
	ChildIDs         []TaskID              `json:"child_ids,omitempty"`
	Duration         time.Duration         `json:"estimated_duration"`
	DependencyIDs    []TaskID              `json:"dependency_ids,omitempty"`
	Requirements     []ResourceRequirement `json:"requirements,omitempty"`
	SchedulingPolicy SchedulingPolicy      `json:"scheduling_policy"`
	Schedule         *TaskSchedule         `json:"schedule,omitempty"`
	Assignments      []VendorAssignment    `json:"assignments,omitempty"`
	ConflictIDs      []uuid.UUID           `json:"conflict_ids,omitempty"`
	VenueInfo        string                `json:"venue_info,omitempty"`
	StatusFlags      StatusFlags           `json:"status_flags"`
	Messages         []string              `json:"messages,omitempty"`
}

// ConflictRecord is the serialization-ready view of a Conflict.
type ConflictRecord struct {
	ID                   uuid.UUID    `json:"id"`
	Type                 ConflictType `json:"type"`
	Severity             string       `json:"severity"`
	AffectedTaskIDs      []TaskID     `json:"affected_task_ids"`
	Description          string       `json:"description"`
	SuggestedResolutions []string     `json:"suggested_resolutions,omitempty"`
	Window               TimeRange    `json:"window"`
}

// NewConflictRecord converts a Conflict into its output form.
func NewConflictRecord(c *Conflict) ConflictRecord {
	return ConflictRecord{
		ID:                   c.ID(),
		Type:                 c.Type(),
		Severity:             c.Severity().String(),
		AffectedTaskIDs:      c.AffectedTaskIDs(),
		Description:          c.Description(),
		SuggestedResolutions: c.SuggestedResolutions(),
		Window:               c.Window(),
	}
}

// ProcessingSummary aggregates per-run outcome counts. The summary always
// reflects the full run, so callers can judge a degraded result.
type ProcessingSummary struct {
	TotalTasks           int                    `json:"total_tasks"`
	TasksWithErrors      int                    `json:"tasks_with_errors"`
	TasksWithWarnings    int                    `json:"tasks_with_warnings"`
	TasksRequiringReview int                    `json:"tasks_requiring_review"`
	ProcessingDurationMs int64                  `json:"processing_duration_ms"`
	Stages               map[string]StageStatus `json:"stages"`
}

// ExtendedTaskList is the final pipeline output: the annotated task list
// in schedule order, the flat conflict list, and the run summary.
type ExtendedTaskList struct {
	Tasks     []ExtendedTask    `json:"tasks"`
	Conflicts []ConflictRecord  `json:"conflicts,omitempty"`
	Summary   ProcessingSummary `json:"summary"`
}

// TaskByID returns the annotated task with the given id.
func (l *ExtendedTaskList) TaskByID(id TaskID) (*ExtendedTask, bool) {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			return &l.Tasks[i], true
		}
	}
	return nil, false
}
