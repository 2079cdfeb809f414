package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// ResultAssembler folds the annotated graph and the conflict list into the
// final extended task list. Pure merge: it introduces no new findings.
type ResultAssembler struct {
	logger *slog.Logger
}

// NewResultAssembler creates a result assembler.
func NewResultAssembler(logger *slog.Logger) *ResultAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultAssembler{logger: logger}
}

// Assemble produces the output list. Tasks are ordered by scheduled start
// then id, with unscheduled tasks trailing in id order.
func (r *ResultAssembler) Assemble(ctx context.Context, graph *domain.TaskGraph, conflicts []*domain.Conflict) *domain.ExtendedTaskList {
	tasks := graph.Tasks()
	sort.SliceStable(tasks, func(i, j int) bool {
		si, sj := tasks[i].Schedule(), tasks[j].Schedule()
		switch {
		case si != nil && sj != nil:
			if !si.StartTime.Equal(sj.StartTime) {
				return si.StartTime.Before(sj.StartTime)
			}
			return tasks[i].ID() < tasks[j].ID()
		case si == nil && sj == nil:
			return tasks[i].ID() < tasks[j].ID()
		default:
			return si != nil
		}
	})

	list := &domain.ExtendedTaskList{
		Tasks:     make([]domain.ExtendedTask, 0, len(tasks)),
		Conflicts: make([]domain.ConflictRecord, 0, len(conflicts)),
	}

	summary := domain.ProcessingSummary{
		TotalTasks: len(tasks),
		Stages:     make(map[string]domain.StageStatus),
	}

	for _, task := range tasks {
		list.Tasks = append(list.Tasks, extend(task))

		flags := task.Flags()
		if flags.HasErrors {
			summary.TasksWithErrors++
		}
		if flags.HasWarnings {
			summary.TasksWithWarnings++
		}
		if flags.RequiresManualReview {
			summary.TasksRequiringReview++
		}
	}

	for _, c := range conflicts {
		list.Conflicts = append(list.Conflicts, domain.NewConflictRecord(c))
	}

	list.Summary = summary
	r.logger.Debug("result assembled",
		"tasks", summary.TotalTasks,
		"conflicts", len(list.Conflicts),
	)
	return list
}

func extend(task *domain.Task) domain.ExtendedTask {
	return domain.ExtendedTask{
		ID:               task.ID(),
		Name:             task.Name(),
		Description:      task.Description(),
		PriorityLevel:    task.PriorityLevel().String(),
		PriorityScore:    task.PriorityScore(),
		GranularityLevel: task.GranularityLevel(),
		ParentID:         task.ParentID(),
		ChildIDs:         task.ChildIDs(),
		Duration:         task.EstimatedDuration(),
		DependencyIDs:    task.DependencyIDs(),
		Requirements:     task.Requirements(),
		SchedulingPolicy: task.Policy(),
		Schedule:         task.Schedule(),
		Assignments:      task.Assignments(),
		ConflictIDs:      task.ConflictIDs(),
		VenueInfo:        task.VenueInfo(),
		StatusFlags:      task.Flags(),
		Messages:         task.Messages(),
	}
}
