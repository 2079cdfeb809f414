package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// planInputFile is the on-disk JSON shape for a planning run. Durations
// are strings in Go duration syntax ("48h", "90m").
type planInputFile struct {
	EventName  string           `json:"event_name"`
	EventDate  time.Time        `json:"event_date"`
	Milestones []milestoneInput `json:"milestones,omitempty"`

	Priority    map[string]priorityInput    `json:"priority"`
	Granularity map[string]granularityInput `json:"granularity"`
	Dependency  map[string]dependencyInput  `json:"dependency"`

	Candidates   []candidateInput                 `json:"candidates,omitempty"`
	Availability map[string][]availabilityInput   `json:"availability,omitempty"`
}

type milestoneInput struct {
	TaskID    string    `json:"task_id"`
	StartTime time.Time `json:"start_time"`
}

type priorityInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	PriorityLevel string  `json:"priority_level"`
	PriorityScore float64 `json:"priority_score"`
}

type granularityInput struct {
	GranularityLevel int    `json:"granularity_level"`
	ParentID         string `json:"parent_id,omitempty"`
}

type requirementInput struct {
	Type                   string `json:"type"`
	Quantity               int    `json:"quantity"`
	AvailabilityConstraint string `json:"availability_constraint,omitempty"`
}

type dependencyInput struct {
	DependencyIDs     []string           `json:"dependency_ids,omitempty"`
	EstimatedDuration string             `json:"estimated_duration"`
	Requirements      []requirementInput `json:"requirements,omitempty"`
	SchedulingPolicy  string             `json:"scheduling_policy,omitempty"`
}

type candidateInput struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Type         string             `json:"type"`
	Capacity     int                `json:"capacity,omitempty"`
	FitnessScore float64            `json:"fitness_score"`
	TaskAffinity map[string]float64 `json:"task_affinity,omitempty"`
}

type availabilityInput struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Quantity int       `json:"quantity"`
}

// loadPlanInputs reads and converts an input file into domain inputs.
func loadPlanInputs(path string) (string, domain.PlanInputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", domain.PlanInputs{}, fmt.Errorf("reading input file: %w", err)
	}

	var file planInputFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return "", domain.PlanInputs{}, fmt.Errorf("parsing input file: %w", err)
	}
	if file.EventDate.IsZero() {
		return "", domain.PlanInputs{}, fmt.Errorf("input file is missing event_date")
	}

	inputs, err := file.toDomain()
	if err != nil {
		return "", domain.PlanInputs{}, err
	}
	return file.EventName, inputs, nil
}

func (f planInputFile) toDomain() (domain.PlanInputs, error) {
	feeds := domain.TaskAttributeFeeds{
		Priority:    make(map[domain.TaskID]domain.PriorityFeedEntry, len(f.Priority)),
		Granularity: make(map[domain.TaskID]domain.GranularityFeedEntry, len(f.Granularity)),
		Dependency:  make(map[domain.TaskID]domain.DependencyFeedEntry, len(f.Dependency)),
	}

	for id, entry := range f.Priority {
		feeds.Priority[domain.TaskID(id)] = domain.PriorityFeedEntry{
			Name:          entry.Name,
			Description:   entry.Description,
			PriorityLevel: entry.PriorityLevel,
			PriorityScore: entry.PriorityScore,
		}
	}
	for id, entry := range f.Granularity {
		feeds.Granularity[domain.TaskID(id)] = domain.GranularityFeedEntry{
			GranularityLevel: entry.GranularityLevel,
			ParentID:         domain.TaskID(entry.ParentID),
		}
	}
	for id, entry := range f.Dependency {
		converted, err := entry.toDomain(id)
		if err != nil {
			return domain.PlanInputs{}, err
		}
		feeds.Dependency[domain.TaskID(id)] = converted
	}

	anchor := domain.EventAnchor{EventDate: f.EventDate}
	for _, m := range f.Milestones {
		anchor.Milestones = append(anchor.Milestones, domain.Milestone{
			TaskID:    domain.TaskID(m.TaskID),
			StartTime: m.StartTime,
		})
	}

	candidates := make([]domain.Candidate, 0, len(f.Candidates))
	for _, c := range f.Candidates {
		candidate := domain.Candidate{
			ID:           c.ID,
			Name:         c.Name,
			Type:         domain.ResourceType(c.Type),
			Capacity:     c.Capacity,
			FitnessScore: c.FitnessScore,
		}
		if len(c.TaskAffinity) > 0 {
			candidate.TaskAffinity = make(map[domain.TaskID]float64, len(c.TaskAffinity))
			for id, score := range c.TaskAffinity {
				candidate.TaskAffinity[domain.TaskID(id)] = score
			}
		}
		candidates = append(candidates, candidate)
	}

	var availability domain.ResourceAvailabilityTable
	if len(f.Availability) > 0 {
		availability = make(domain.ResourceAvailabilityTable, len(f.Availability))
		for rt, windows := range f.Availability {
			for _, w := range windows {
				availability[domain.ResourceType(rt)] = append(availability[domain.ResourceType(rt)], domain.AvailabilityWindow{
					Window:   domain.TimeRange{Start: w.Start, End: w.End},
					Quantity: w.Quantity,
				})
			}
		}
	}

	return domain.PlanInputs{
		Feeds:        feeds,
		Anchor:       anchor,
		Candidates:   candidates,
		Availability: availability,
	}, nil
}

func (d dependencyInput) toDomain(id string) (domain.DependencyFeedEntry, error) {
	var duration time.Duration
	if d.EstimatedDuration != "" {
		parsed, err := time.ParseDuration(d.EstimatedDuration)
		if err != nil {
			return domain.DependencyFeedEntry{}, fmt.Errorf("task %q: invalid estimated_duration %q: %w", id, d.EstimatedDuration, err)
		}
		duration = parsed
	}

	entry := domain.DependencyFeedEntry{
		EstimatedDuration: duration,
		SchedulingPolicy:  domain.SchedulingPolicy(d.SchedulingPolicy),
	}
	for _, dep := range d.DependencyIDs {
		entry.DependencyIDs = append(entry.DependencyIDs, domain.TaskID(dep))
	}
	for _, r := range d.Requirements {
		entry.Requirements = append(entry.Requirements, domain.ResourceRequirement{
			Type:                   domain.ResourceType(r.Type),
			Quantity:               r.Quantity,
			AvailabilityConstraint: r.AvailabilityConstraint,
		})
	}
	return entry, nil
}
