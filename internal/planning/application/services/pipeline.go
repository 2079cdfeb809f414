package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// Pipeline drives the six processing stages in order. Stage failures come
// in exactly two fatal shapes, an empty graph and a dependency cycle;
// everything else degrades into per-task annotations and the run completes.
type Pipeline struct {
	builder   *GraphBuilder
	validator *IntegrityValidator
	scheduler *SchedulerEngine
	detector  *ConflictDetector
	assigner  *VendorAssigner
	assembler *ResultAssembler
	logger    *slog.Logger
}

// NewPipeline wires the stages together.
func NewPipeline(
	builder *GraphBuilder,
	validator *IntegrityValidator,
	scheduler *SchedulerEngine,
	detector *ConflictDetector,
	assigner *VendorAssigner,
	assembler *ResultAssembler,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		builder:   builder,
		validator: validator,
		scheduler: scheduler,
		detector:  detector,
		assigner:  assigner,
		assembler: assembler,
		logger:    logger,
	}
}

// NewDefaultPipeline builds a pipeline with default stage configuration.
func NewDefaultPipeline(logger *slog.Logger) *Pipeline {
	return NewPipeline(
		NewGraphBuilder(logger),
		NewIntegrityValidator(logger),
		NewSchedulerEngine(SchedulerConfig{}, logger),
		NewConflictDetector(DetectorConfig{}, logger),
		NewVendorAssigner(AssignerConfig{}, logger),
		NewResultAssembler(logger),
		logger,
	)
}

// Run executes a full planning pass over the materialized inputs. The
// returned list is complete or the error is fatal; there is no partial
// success shape.
func (p *Pipeline) Run(ctx context.Context, inputs domain.PlanInputs) (*domain.ExtendedTaskList, error) {
	started := time.Now()
	stages := make(map[string]domain.StageStatus, 6)

	graph, err := p.builder.Build(ctx, inputs.Feeds)
	if err != nil {
		stages[domain.StageGraphBuilder] = domain.StageFailed
		p.logger.Error("graph build failed", "error", err)
		return nil, err
	}
	stages[domain.StageGraphBuilder] = statusFor(0, warningCount(graph))

	if err := p.validator.Validate(ctx, graph); err != nil {
		stages[domain.StageIntegrityValidator] = domain.StageFailed
		return nil, err
	}
	stages[domain.StageIntegrityValidator] = domain.StageOK

	scheduled, err := p.scheduler.Schedule(ctx, graph, inputs.Anchor)
	if err != nil {
		stages[domain.StageScheduler] = domain.StageFailed
		return nil, err
	}
	stages[domain.StageScheduler] = statusFor(warningCount(graph), warningCount(scheduled))

	detected, conflicts, err := p.detector.Detect(ctx, scheduled, inputs.Anchor, inputs.Availability)
	if err != nil {
		stages[domain.StageConflictDetector] = domain.StageFailed
		return nil, err
	}
	if len(conflicts) > 0 {
		stages[domain.StageConflictDetector] = domain.StageDegraded
	} else {
		stages[domain.StageConflictDetector] = domain.StageOK
	}

	assigned, err := p.assigner.Assign(ctx, detected, inputs.Candidates)
	if err != nil {
		stages[domain.StageVendorAssigner] = domain.StageFailed
		return nil, err
	}
	stages[domain.StageVendorAssigner] = statusFor(reviewCount(detected), reviewCount(assigned))

	result := p.assembler.Assemble(ctx, assigned, conflicts)
	stages[domain.StageResultAssembler] = domain.StageOK

	result.Summary.Stages = stages
	result.Summary.ProcessingDurationMs = time.Since(started).Milliseconds()

	p.logger.Info("planning pipeline completed",
		"tasks", result.Summary.TotalTasks,
		"conflicts", len(result.Conflicts),
		"warnings", result.Summary.TasksWithWarnings,
		"duration_ms", result.Summary.ProcessingDurationMs,
	)
	return result, nil
}

// statusFor reports degraded when a stage raised the tracked count over
// its input graph's baseline.
func statusFor(before, after int) domain.StageStatus {
	if after > before {
		return domain.StageDegraded
	}
	return domain.StageOK
}

func warningCount(graph *domain.TaskGraph) int {
	n := 0
	for _, task := range graph.Tasks() {
		if task.Flags().HasWarnings {
			n++
		}
	}
	return n
}

func reviewCount(graph *domain.TaskGraph) int {
	n := 0
	for _, task := range graph.Tasks() {
		if task.Flags().RequiresManualReview {
			n++
		}
	}
	return n
}
