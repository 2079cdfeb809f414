package domain

import (
	"sort"
	"time"
)

// The three upstream analysis feeds. Each is a partial attribute record
// keyed by task id; a task may appear in any subset of them. Missing
// entries default with a per-task warning — a single absent feed never
// blocks the run.

// PriorityFeedEntry carries the priority analysis output for one task.
type PriorityFeedEntry struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	PriorityLevel string  `json:"priority_level"`
	PriorityScore float64 `json:"priority_score"`
}

// GranularityFeedEntry carries the decomposition analysis output.
type GranularityFeedEntry struct {
	GranularityLevel int    `json:"granularity_level"`
	ParentID         TaskID `json:"parent_id,omitempty"`
}

// DependencyFeedEntry carries dependency and resource analysis output.
type DependencyFeedEntry struct {
	DependencyIDs     []TaskID              `json:"dependency_ids,omitempty"`
	EstimatedDuration time.Duration         `json:"estimated_duration"`
	Requirements      []ResourceRequirement `json:"requirements,omitempty"`
	SchedulingPolicy  SchedulingPolicy      `json:"scheduling_policy,omitempty"`
}

// TaskAttributeFeeds bundles the three feeds for one pipeline run.
type TaskAttributeFeeds struct {
	Priority    map[TaskID]PriorityFeedEntry    `json:"priority"`
	Granularity map[TaskID]GranularityFeedEntry `json:"granularity"`
	Dependency  map[TaskID]DependencyFeedEntry  `json:"dependency"`
}

// TaskIDs returns the union of task ids across all three feeds, sorted.
func (f TaskAttributeFeeds) TaskIDs() []TaskID {
	seen := make(map[TaskID]struct{})
	for id := range f.Priority {
		seen[id] = struct{}{}
	}
	for id := range f.Granularity {
		seen[id] = struct{}{}
	}
	for id := range f.Dependency {
		seen[id] = struct{}{}
	}
	ids := make([]TaskID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
