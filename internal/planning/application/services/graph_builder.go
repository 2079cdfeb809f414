package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// GraphBuilder merges the three upstream attribute feeds into one task
// graph. A task missing from a feed keeps defaults for that feed's fields
// and carries a warning; only an empty merged graph is fatal.
type GraphBuilder struct {
	logger *slog.Logger
}

// NewGraphBuilder creates a graph builder.
func NewGraphBuilder(logger *slog.Logger) *GraphBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphBuilder{logger: logger}
}

// Build assembles the merged graph from the id union of all three feeds.
func (b *GraphBuilder) Build(ctx context.Context, feeds domain.TaskAttributeFeeds) (*domain.TaskGraph, error) {
	ids := feeds.TaskIDs()
	if len(ids) == 0 {
		return nil, domain.ErrEmptyGraph
	}

	graph := domain.NewTaskGraph()
	for _, id := range ids {
		task, err := b.buildTask(id, feeds)
		if err != nil {
			return nil, err
		}
		if err := graph.Add(task); err != nil {
			return nil, err
		}
	}

	b.pruneDanglingReferences(graph)
	graph.DeriveChildren()

	b.logger.Debug("task graph built",
		"tasks", graph.Len(),
	)
	return graph, nil
}

func (b *GraphBuilder) buildTask(id domain.TaskID, feeds domain.TaskAttributeFeeds) (*domain.Task, error) {
	name := string(id)
	if entry, ok := feeds.Priority[id]; ok && entry.Name != "" {
		name = entry.Name
	}

	task, err := domain.NewTask(id, name)
	if err != nil {
		return nil, err
	}

	if entry, ok := feeds.Priority[id]; ok {
		task.SetDescription(entry.Description)
		level, err := domain.ParsePriorityLevel(entry.PriorityLevel)
		if err != nil {
			task.SetPriority(domain.PriorityMedium, entry.PriorityScore)
			task.AddWarning(fmt.Sprintf("unknown priority level %q; defaulted to medium", entry.PriorityLevel))
		} else {
			task.SetPriority(level, entry.PriorityScore)
		}
	} else {
		task.AddWarning("priority feed entry missing; defaulted to medium priority")
	}

	if entry, ok := feeds.Granularity[id]; ok {
		task.SetGranularity(entry.GranularityLevel, entry.ParentID)
	} else {
		task.AddWarning("granularity feed entry missing; defaulted to top-level")
	}

	if entry, ok := feeds.Dependency[id]; ok {
		task.SetEstimatedDuration(entry.EstimatedDuration)
		for _, dep := range entry.DependencyIDs {
			if dep == id {
				task.AddWarning("self-dependency removed")
				continue
			}
			task.AddDependency(dep)
		}
		for _, req := range entry.Requirements {
			if err := task.AddRequirement(req); err != nil {
				task.AddWarning(fmt.Sprintf("invalid %s requirement dropped: %v", req.Type, err))
			}
		}
		switch entry.SchedulingPolicy {
		case domain.PolicyASAP, domain.PolicyALAP:
			task.SetPolicy(entry.SchedulingPolicy)
		case "":
			task.AddWarning("scheduling policy not specified; defaulted to asap")
		default:
			task.AddWarning(fmt.Sprintf("unknown scheduling policy %q; defaulted to asap", entry.SchedulingPolicy))
		}
	} else {
		task.AddWarning("dependency feed entry missing; assuming no prerequisites")
	}

	return task, nil
}

// pruneDanglingReferences drops dependency and parent edges pointing at
// ids absent from the merged set, recording a warning on the referencing
// task instead of failing the run.
func (b *GraphBuilder) pruneDanglingReferences(graph *domain.TaskGraph) {
	for _, task := range graph.Tasks() {
		for _, dep := range task.DependencyIDs() {
			if _, ok := graph.Task(dep); !ok {
				task.RemoveDependency(dep)
				task.AddWarning(fmt.Sprintf("dependency %q not found; edge removed", dep))
				b.logger.Warn("dangling dependency pruned",
					"task_id", task.ID(),
					"dependency_id", dep,
				)
			}
		}
		if parent := task.ParentID(); parent != "" {
			if _, ok := graph.Task(parent); !ok {
				task.ClearParent()
				task.AddWarning(fmt.Sprintf("parent %q not found; reference removed", parent))
			}
		}
	}
}
