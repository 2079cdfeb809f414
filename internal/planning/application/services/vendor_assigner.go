package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

const defaultLowFitnessThreshold = 0.5

// AssignerConfig tunes candidate matching.
type AssignerConfig struct {
	// MinFitness excludes candidates scoring below it for a task.
	MinFitness float64
	// LowFitnessThreshold adds a warning when the chosen candidate scores
	// below it.
	LowFitnessThreshold float64
}

// VendorAssigner matches vendor and venue requirements against the
// candidate pool in one greedy pass. Higher-priority tasks pick first and
// never release a booking for a later task; a pool exhausted mid-pass
// flags the remaining tasks for manual assignment instead of failing.
type VendorAssigner struct {
	config AssignerConfig
	logger *slog.Logger
}

// NewVendorAssigner creates an assigner. A zero LowFitnessThreshold falls
// back to 0.5; MinFitness zero means no floor.
func NewVendorAssigner(config AssignerConfig, logger *slog.Logger) *VendorAssigner {
	if config.LowFitnessThreshold <= 0 {
		config.LowFitnessThreshold = defaultLowFitnessThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VendorAssigner{config: config, logger: logger}
}

// Assign annotates a clone of the graph with vendor assignments and
// returns it. Tasks claim candidates in priority-level order (critical
// first), priority score then scheduled start breaking ties, id breaking
// the rest.
func (a *VendorAssigner) Assign(ctx context.Context, graph *domain.TaskGraph, candidates []domain.Candidate) (*domain.TaskGraph, error) {
	out := graph.Clone()
	pool := domain.NewCandidatePool(candidates)

	tasks := out.Tasks()
	sort.SliceStable(tasks, func(i, j int) bool {
		ti, tj := tasks[i], tasks[j]
		if ti.PriorityLevel() != tj.PriorityLevel() {
			return ti.PriorityLevel() > tj.PriorityLevel()
		}
		if ti.PriorityScore() != tj.PriorityScore() {
			return ti.PriorityScore() > tj.PriorityScore()
		}
		si, sj := ti.Schedule(), tj.Schedule()
		switch {
		case si != nil && sj != nil && !si.StartTime.Equal(sj.StartTime):
			return si.StartTime.Before(sj.StartTime)
		case si == nil && sj != nil:
			return false
		case si != nil && sj == nil:
			return true
		}
		return ti.ID() < tj.ID()
	})

	for _, task := range tasks {
		for _, req := range task.Requirements() {
			if req.Type != domain.ResourceVendor && req.Type != domain.ResourceVenue {
				continue
			}
			a.assignRequirement(task, req, pool)
		}
	}

	a.logger.Debug("vendor assignment finished", "tasks", len(tasks))
	return out, nil
}

func (a *VendorAssigner) assignRequirement(task *domain.Task, req domain.ResourceRequirement, pool *domain.CandidatePool) {
	best, available := a.pickBest(task.ID(), req.Type, pool)
	if best == nil {
		task.AddAssignment(domain.VendorAssignment{
			TaskID:                   task.ID(),
			VendorType:               req.Type,
			Rationale:                fmt.Sprintf("no %s candidate with remaining capacity", req.Type),
			RequiresManualAssignment: true,
		})
		task.AddWarning(fmt.Sprintf("%s pool exhausted; manual assignment required", req.Type))
		a.logger.Warn("candidate pool exhausted",
			"task_id", task.ID(),
			"resource_type", req.Type,
		)
		return
	}

	pool.Reserve(best.ID)
	fitness := best.FitnessFor(task.ID())

	assignment := domain.VendorAssignment{
		TaskID:       task.ID(),
		VendorID:     best.ID,
		VendorName:   best.Name,
		VendorType:   req.Type,
		FitnessScore: fitness,
		Rationale: fmt.Sprintf("highest fitness %.2f among %d available %s candidates",
			fitness, available, req.Type),
	}
	task.AddAssignment(assignment)

	if req.Type == domain.ResourceVenue {
		task.SetVenueInfo(best.Name)
	}
	if fitness < a.config.LowFitnessThreshold {
		task.AddWarning(fmt.Sprintf("assigned %s %q has low fitness %.2f", req.Type, best.Name, fitness))
	}
}

// pickBest returns the best-scoring available candidate for a task, ties
// broken by candidate id, plus how many were considered.
func (a *VendorAssigner) pickBest(taskID domain.TaskID, rt domain.ResourceType, pool *domain.CandidatePool) (*domain.Candidate, int) {
	available := pool.Available(rt)

	var best *domain.Candidate
	considered := 0
	for i := range available {
		c := &available[i]
		fitness := c.FitnessFor(taskID)
		if fitness < a.config.MinFitness {
			continue
		}
		considered++
		switch {
		case best == nil:
			best = c
		case fitness > best.FitnessFor(taskID):
			best = c
		case fitness == best.FitnessFor(taskID) && c.ID < best.ID:
			best = c
		}
	}
	return best, considered
}
