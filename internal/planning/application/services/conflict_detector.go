package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

const (
	defaultDetectorWorkers = 4
	defaultCriticalWindow  = 48 * time.Hour
	defaultCapacity        = 1
)

// DetectorConfig tunes conflict detection.
type DetectorConfig struct {
	// Workers is the number of goroutines scanning task pairs.
	Workers int
	// CriticalWindow escalates any conflict this close to the event date.
	CriticalWindow time.Duration
	// DefaultCapacity applies to resource types absent from the
	// availability table.
	DefaultCapacity int
}

// ConflictDetector scans the scheduled graph for timeline, resource and
// venue conflicts. Detection degrades, never fails: every finding becomes
// a conflict record plus warnings on the affected tasks, and the run
// continues.
type ConflictDetector struct {
	config DetectorConfig
	logger *slog.Logger
}

// NewConflictDetector creates a detector. Zero config fields fall back to
// 4 workers, a 48-hour critical window and single-unit capacity.
func NewConflictDetector(config DetectorConfig, logger *slog.Logger) *ConflictDetector {
	if config.Workers <= 0 {
		config.Workers = defaultDetectorWorkers
	}
	if config.CriticalWindow <= 0 {
		config.CriticalWindow = defaultCriticalWindow
	}
	if config.DefaultCapacity <= 0 {
		config.DefaultCapacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictDetector{config: config, logger: logger}
}

// Detect returns an annotated clone of the graph plus the sorted conflict
// list. Pair scanning fans out across workers; each worker collects into a
// private slice and the merged result is canonically sorted, so worker
// scheduling never changes the output.
func (d *ConflictDetector) Detect(
	ctx context.Context,
	graph *domain.TaskGraph,
	anchor domain.EventAnchor,
	availability domain.ResourceAvailabilityTable,
) (*domain.TaskGraph, []*domain.Conflict, error) {
	out := graph.Clone()

	scheduled := make([]*domain.Task, 0, out.Len())
	for _, task := range out.Tasks() {
		if task.Schedule() != nil {
			scheduled = append(scheduled, task)
		}
	}

	pairs := buildPairs(scheduled)
	conflicts := d.scanPairs(ctx, pairs, anchor, availability)
	conflicts = append(conflicts, d.scanAggregateDemand(scheduled, anchor, availability)...)

	domain.SortConflicts(conflicts)

	for _, c := range conflicts {
		for _, id := range c.AffectedTaskIDs() {
			if task, ok := out.Task(id); ok {
				task.AddConflict(c.ID())
				task.AddWarning(fmt.Sprintf("%s conflict: %s", c.Type(), c.Description()))
			}
		}
	}

	d.logger.Debug("conflict detection finished",
		"scheduled_tasks", len(scheduled),
		"conflicts", len(conflicts),
	)
	return out, conflicts, nil
}

type taskPair struct {
	a, b *domain.Task
}

// buildPairs lists every unordered pair of scheduled tasks in id order.
func buildPairs(tasks []*domain.Task) []taskPair {
	pairs := make([]taskPair, 0, len(tasks)*(len(tasks)-1)/2)
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			pairs = append(pairs, taskPair{a: tasks[i], b: tasks[j]})
		}
	}
	return pairs
}

func (d *ConflictDetector) scanPairs(
	ctx context.Context,
	pairs []taskPair,
	anchor domain.EventAnchor,
	availability domain.ResourceAvailabilityTable,
) []*domain.Conflict {
	workers := d.config.Workers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers == 0 {
		return nil
	}

	results := make([][]*domain.Conflict, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(pairs); i += workers {
				results[w] = append(results[w], d.checkPair(pairs[i], anchor, availability)...)
			}
		}(w)
	}
	wg.Wait()

	var merged []*domain.Conflict
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

func (d *ConflictDetector) checkPair(
	p taskPair,
	anchor domain.EventAnchor,
	availability domain.ResourceAvailabilityTable,
) []*domain.Conflict {
	windowA := p.a.Schedule().Window()
	windowB := p.b.Schedule().Window()
	if !windowA.Overlaps(windowB) {
		return nil
	}
	overlap := intersect(windowA, windowB)

	var found []*domain.Conflict

	for _, rt := range []domain.ResourceType{domain.ResourcePersonnel, domain.ResourceEquipment} {
		qa, qb := requiredQuantity(p.a, rt), requiredQuantity(p.b, rt)
		if qa == 0 || qb == 0 {
			continue
		}
		capacity := d.capacityFor(rt, overlap, availability)
		if qa+qb <= capacity {
			continue
		}

		severity := domain.SeverityMedium
		if p.a.PriorityLevel() >= domain.PriorityHigh || p.b.PriorityLevel() >= domain.PriorityHigh {
			severity = domain.SeverityHigh
		}
		severity = d.escalate(severity, overlap, anchor, p.a, p.b)

		c, err := domain.NewConflict(
			domain.ConflictTimeline,
			severity,
			[]domain.TaskID{p.a.ID(), p.b.ID()},
			fmt.Sprintf("tasks %q and %q compete for %s (need %d, capacity %d) during overlapping windows",
				p.a.ID(), p.b.ID(), rt, qa+qb, capacity),
			[]string{
				"stagger the overlapping task windows",
				fmt.Sprintf("secure additional %s for the overlap", rt),
				"lower the priority of one task and reschedule",
			},
			overlap,
		)
		if err == nil {
			found = append(found, c)
		}
	}

	if requiredQuantity(p.a, domain.ResourceVenue) > 0 && requiredQuantity(p.b, domain.ResourceVenue) > 0 {
		severity := d.escalate(domain.SeverityHigh, overlap, anchor, p.a, p.b)
		c, err := domain.NewConflict(
			domain.ConflictVenue,
			severity,
			[]domain.TaskID{p.a.ID(), p.b.ID()},
			fmt.Sprintf("tasks %q and %q require exclusive venue use during overlapping windows", p.a.ID(), p.b.ID()),
			[]string{
				"book a secondary venue for one task",
				"resequence the tasks to share the venue",
			},
			overlap,
		)
		if err == nil {
			found = append(found, c)
		}
	}

	return found
}

// scanAggregateDemand sweeps each resource type's demand curve and reports
// windows where total demand exceeds capacity across more than a single
// pair. Boundaries come from schedule starts and ends, so demand is
// constant within each swept segment.
func (d *ConflictDetector) scanAggregateDemand(
	tasks []*domain.Task,
	anchor domain.EventAnchor,
	availability domain.ResourceAvailabilityTable,
) []*domain.Conflict {
	byType := make(map[domain.ResourceType][]*domain.Task)
	for _, task := range tasks {
		for _, req := range task.Requirements() {
			if req.Type == domain.ResourceVenue {
				continue
			}
			byType[req.Type] = append(byType[req.Type], task)
		}
	}

	types := make([]domain.ResourceType, 0, len(byType))
	for rt := range byType {
		types = append(types, rt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var found []*domain.Conflict
	for _, rt := range types {
		found = append(found, d.sweepType(rt, byType[rt], anchor, availability)...)
	}
	return found
}

func (d *ConflictDetector) sweepType(
	rt domain.ResourceType,
	tasks []*domain.Task,
	anchor domain.EventAnchor,
	availability domain.ResourceAvailabilityTable,
) []*domain.Conflict {
	boundarySet := make(map[time.Time]struct{})
	for _, task := range tasks {
		w := task.Schedule().Window()
		boundarySet[w.Start] = struct{}{}
		boundarySet[w.End] = struct{}{}
	}
	boundaries := make([]time.Time, 0, len(boundarySet))
	for at := range boundarySet {
		boundaries = append(boundaries, at)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })

	var found []*domain.Conflict
	reported := make(map[string]bool)

	for i := 0; i+1 < len(boundaries); i++ {
		segment := domain.TimeRange{Start: boundaries[i], End: boundaries[i+1]}

		demand := 0
		var active []*domain.Task
		for _, task := range tasks {
			if task.Schedule().Window().Overlaps(segment) {
				demand += requiredQuantity(task, rt)
				active = append(active, task)
			}
		}
		// Pairwise contention is already covered by the timeline scan.
		if len(active) < 3 {
			continue
		}
		capacity := d.capacityFor(rt, segment, availability)
		if demand <= capacity {
			continue
		}

		ids := make([]domain.TaskID, 0, len(active))
		for _, task := range active {
			ids = append(ids, task.ID())
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		key := fmt.Sprint(ids)
		if reported[key] {
			continue
		}
		reported[key] = true

		severity := domain.SeverityMedium
		if capacity > 0 && demand >= 2*capacity {
			severity = domain.SeverityHigh
		}
		severity = d.escalate(severity, segment, anchor, active...)

		c, err := domain.NewConflict(
			domain.ConflictResource,
			severity,
			ids,
			fmt.Sprintf("aggregate %s demand %d exceeds capacity %d across %d concurrent tasks",
				rt, demand, capacity, len(active)),
			[]string{
				fmt.Sprintf("increase %s availability during the contested window", rt),
				"shift lower-priority tasks out of the window",
			},
			segment,
		)
		if err == nil {
			found = append(found, c)
		}
	}
	return found
}

func (d *ConflictDetector) capacityFor(
	rt domain.ResourceType,
	window domain.TimeRange,
	availability domain.ResourceAvailabilityTable,
) int {
	if capacity, ok := availability.CapacityDuring(rt, window); ok {
		return capacity
	}
	return d.config.DefaultCapacity
}

// escalate raises severity to critical when the conflict sits inside the
// critical window before the event or touches a critical-priority task.
func (d *ConflictDetector) escalate(
	severity domain.Severity,
	window domain.TimeRange,
	anchor domain.EventAnchor,
	tasks ...*domain.Task,
) domain.Severity {
	if anchor.EventDate.Sub(window.Start) <= d.config.CriticalWindow {
		return domain.SeverityCritical
	}
	for _, task := range tasks {
		if task.PriorityLevel() == domain.PriorityCritical {
			return domain.SeverityCritical
		}
	}
	return severity
}

func requiredQuantity(task *domain.Task, rt domain.ResourceType) int {
	total := 0
	for _, req := range task.Requirements() {
		if req.Type == rt {
			total += req.Quantity
		}
	}
	return total
}

func intersect(a, b domain.TimeRange) domain.TimeRange {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return domain.TimeRange{Start: start, End: end}
}
