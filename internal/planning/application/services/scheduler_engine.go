package services

import (
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

const (
	defaultBufferRatio = 0.10
	defaultLeadWindow  = 30 * 24 * time.Hour
)

// SchedulerConfig tunes the timeline computation.
type SchedulerConfig struct {
	// BufferRatio is the slack appended to each task as a fraction of its
	// estimated duration.
	BufferRatio float64
	// LeadWindow is how far before the event date planning work may start.
	LeadWindow time.Duration
}

// SchedulerEngine computes a start and end time for every task via a
// priority-aware topological traversal. Validation has already rejected
// cycles, so the traversal always drains the whole graph.
type SchedulerEngine struct {
	config SchedulerConfig
	logger *slog.Logger
}

// NewSchedulerEngine creates a scheduler. Zero config fields fall back to
// a 10% buffer and a 30-day lead window.
func NewSchedulerEngine(config SchedulerConfig, logger *slog.Logger) *SchedulerEngine {
	if config.BufferRatio <= 0 {
		config.BufferRatio = defaultBufferRatio
	}
	if config.LeadWindow <= 0 {
		config.LeadWindow = defaultLeadWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerEngine{config: config, logger: logger}
}

// readyQueue orders schedulable tasks by priority score descending, id
// ascending on ties. The tie-break keeps equal-priority output stable.
type readyQueue []*domain.Task

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	if q[i].PriorityScore() != q[j].PriorityScore() {
		return q[i].PriorityScore() > q[j].PriorityScore()
	}
	return q[i].ID() < q[j].ID()
}
func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(*domain.Task)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Schedule annotates a clone of the graph with computed task schedules and
// returns it. The input graph is left untouched.
func (e *SchedulerEngine) Schedule(ctx context.Context, graph *domain.TaskGraph, anchor domain.EventAnchor) (*domain.TaskGraph, error) {
	out := graph.Clone()
	planningStart := anchor.EventDate.Add(-e.config.LeadWindow)

	indegree := make(map[domain.TaskID]int, out.Len())
	dependents := make(map[domain.TaskID][]domain.TaskID, out.Len())
	for _, task := range out.Tasks() {
		deps := task.DependencyIDs()
		indegree[task.ID()] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], task.ID())
		}
	}

	ready := &readyQueue{}
	heap.Init(ready)
	for _, task := range out.Tasks() {
		if indegree[task.ID()] == 0 {
			heap.Push(ready, task)
		}
	}

	ends := make(map[domain.TaskID]time.Time, out.Len())
	scheduled := 0

	for ready.Len() > 0 {
		task := heap.Pop(ready).(*domain.Task)
		e.scheduleTask(task, out, anchor, planningStart, ends)
		scheduled++

		for _, depID := range dependents[task.ID()] {
			indegree[depID]--
			if indegree[depID] == 0 {
				next, _ := out.Task(depID)
				heap.Push(ready, next)
			}
		}
	}

	// Unreachable after cycle validation; kept as a guard against callers
	// skipping the validator.
	if scheduled != out.Len() {
		return nil, &domain.CycleError{Path: unscheduledIDs(out, ends)}
	}

	e.logger.Debug("schedule computed",
		"tasks", scheduled,
		"planning_start", planningStart,
		"event_date", anchor.EventDate,
	)
	return out, nil
}

func (e *SchedulerEngine) scheduleTask(
	task *domain.Task,
	graph *domain.TaskGraph,
	anchor domain.EventAnchor,
	planningStart time.Time,
	ends map[domain.TaskID]time.Time,
) {
	duration := task.EstimatedDuration()
	buffer := time.Duration(float64(duration) * e.config.BufferRatio)

	// Earliest feasible start is the latest prerequisite end.
	earliest := planningStart
	var blocking domain.TaskID
	for _, dep := range task.DependencyIDs() {
		if end, ok := ends[dep]; ok && end.After(earliest) {
			earliest = end
			blocking = dep
		}
	}

	var start time.Time
	var notes []string

	if pinned, ok := anchor.PinnedStart(task.ID()); ok {
		// Pinned milestones are externally fixed and always win; if the pin
		// lands before a prerequisite finishes, the inconsistency is
		// surfaced rather than the pin moved.
		start = pinned
		notes = append(notes, fmt.Sprintf("start pinned to milestone at %s", pinned.Format(time.RFC3339)))
		if blocking != "" && pinned.Before(earliest) {
			task.AddWarning(fmt.Sprintf(
				"pinned start %s precedes completion of prerequisite %q at %s",
				pinned.Format(time.RFC3339), blocking, earliest.Format(time.RFC3339),
			))
		}
	} else {
		switch task.Policy() {
		case domain.PolicyALAP:
			latest := anchor.EventDate.Add(-(duration + buffer))
			if latest.Before(earliest) {
				start = earliest
				if blocking != "" {
					notes = append(notes, fmt.Sprintf("delayed by prerequisite %q", blocking))
				}
			} else {
				start = latest
				notes = append(notes, "scheduled as late as possible before event date")
			}
		default:
			start = earliest
			if blocking != "" && earliest.After(planningStart) {
				notes = append(notes, fmt.Sprintf("delayed by prerequisite %q", blocking))
			}
		}
	}

	end := start.Add(duration + buffer)
	schedule, err := domain.NewTaskSchedule(task.ID(), start, end, buffer)
	if err != nil {
		// End is always start plus a non-negative duration, so this cannot
		// trigger; degrade the task rather than abort if it ever does.
		task.AddError(fmt.Sprintf("schedule computation failed: %v", err))
		return
	}
	if buffer > 0 {
		schedule.AddConstraint(fmt.Sprintf("includes %s buffer", buffer))
	}
	for _, note := range notes {
		schedule.AddConstraint(note)
	}
	if end.After(anchor.EventDate) {
		task.AddWarning(fmt.Sprintf(
			"scheduled completion %s falls after event date %s",
			end.Format(time.RFC3339), anchor.EventDate.Format(time.RFC3339),
		))
	}

	task.AttachSchedule(schedule)
	ends[task.ID()] = end
}

func unscheduledIDs(graph *domain.TaskGraph, ends map[domain.TaskID]time.Time) []domain.TaskID {
	var out []domain.TaskID
	for _, id := range graph.IDs() {
		if _, ok := ends[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
