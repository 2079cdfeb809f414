package domain

import (
	"errors"
	"time"
)

var ErrInvalidTimeRange = errors.New("end time must be after start time")

// TimeRange represents a half-open time period [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps checks if two time ranges intersect.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// Contains checks if a time falls within this range.
func (t TimeRange) Contains(at time.Time) bool {
	return !at.Before(t.Start) && at.Before(t.End)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// TaskSchedule is the scheduler's annotation for one task.
//
// EndTime is derived: StartTime + estimated duration + BufferTime.
type TaskSchedule struct {
	TaskID      TaskID        `json:"task_id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	BufferTime  time.Duration `json:"buffer_time"`
	Constraints []string      `json:"constraints,omitempty"`
}

// NewTaskSchedule creates a schedule for a task window.
func NewTaskSchedule(taskID TaskID, start, end time.Time, buffer time.Duration) (*TaskSchedule, error) {
	if end.Before(start) {
		return nil, ErrInvalidTimeRange
	}
	if buffer < 0 {
		buffer = 0
	}
	return &TaskSchedule{
		TaskID:     taskID,
		StartTime:  start,
		EndTime:    end,
		BufferTime: buffer,
	}, nil
}

// Window returns the scheduled time range.
func (s *TaskSchedule) Window() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// AddConstraint records a human-readable scheduling note.
func (s *TaskSchedule) AddConstraint(note string) {
	s.Constraints = append(s.Constraints, note)
}

// Clone returns a deep copy of the schedule.
func (s *TaskSchedule) Clone() *TaskSchedule {
	dup := *s
	dup.Constraints = append([]string(nil), s.Constraints...)
	return &dup
}
