package services_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var eventDate = time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)

// eventFeeds returns a five-task preparation scenario: a venue booking
// gating three parallel workstreams that all gate the ceremony.
func eventFeeds() domain.TaskAttributeFeeds {
	return domain.TaskAttributeFeeds{
		Priority: map[domain.TaskID]domain.PriorityFeedEntry{
			"venue_booking":  {Name: "Book venue", PriorityLevel: "critical", PriorityScore: 95},
			"catering_setup": {Name: "Catering setup", PriorityLevel: "high", PriorityScore: 80},
			"photography":    {Name: "Photography", PriorityLevel: "medium", PriorityScore: 55},
			"decor":          {Name: "Decoration", PriorityLevel: "medium", PriorityScore: 60},
			"ceremony":       {Name: "Ceremony", PriorityLevel: "critical", PriorityScore: 99},
		},
		Granularity: map[domain.TaskID]domain.GranularityFeedEntry{
			"venue_booking":  {GranularityLevel: 0},
			"catering_setup": {GranularityLevel: 0},
			"photography":    {GranularityLevel: 0},
			"decor":          {GranularityLevel: 0},
			"ceremony":       {GranularityLevel: 0},
		},
		Dependency: map[domain.TaskID]domain.DependencyFeedEntry{
			"venue_booking": {
				EstimatedDuration: 48 * time.Hour,
				Requirements: []domain.ResourceRequirement{
					{Type: domain.ResourceVenue, Quantity: 1},
				},
				SchedulingPolicy: domain.PolicyASAP,
			},
			"catering_setup": {
				DependencyIDs:     []domain.TaskID{"venue_booking"},
				EstimatedDuration: 24 * time.Hour,
				Requirements: []domain.ResourceRequirement{
					{Type: domain.ResourceVendor, Quantity: 1},
					{Type: domain.ResourcePersonnel, Quantity: 2},
				},
				SchedulingPolicy: domain.PolicyASAP,
			},
			"photography": {
				DependencyIDs:     []domain.TaskID{"venue_booking"},
				EstimatedDuration: 8 * time.Hour,
				Requirements: []domain.ResourceRequirement{
					{Type: domain.ResourceVendor, Quantity: 1},
				},
				SchedulingPolicy: domain.PolicyASAP,
			},
			"decor": {
				DependencyIDs:     []domain.TaskID{"venue_booking"},
				EstimatedDuration: 24 * time.Hour,
				Requirements: []domain.ResourceRequirement{
					{Type: domain.ResourcePersonnel, Quantity: 2},
				},
				SchedulingPolicy: domain.PolicyASAP,
			},
			"ceremony": {
				DependencyIDs:     []domain.TaskID{"catering_setup", "decor", "photography"},
				EstimatedDuration: 8 * time.Hour,
				Requirements: []domain.ResourceRequirement{
					{Type: domain.ResourceVenue, Quantity: 1},
					{Type: domain.ResourcePersonnel, Quantity: 4},
				},
				SchedulingPolicy: domain.PolicyALAP,
			},
		},
	}
}

func eventCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "vendor-cater-1", Name: "Golden Fork Catering", Type: domain.ResourceVendor, Capacity: 1, FitnessScore: 0.9},
		{ID: "vendor-photo-1", Name: "Aperture Studio", Type: domain.ResourceVendor, Capacity: 1, FitnessScore: 0.8},
		{ID: "venue-hall-1", Name: "Grand Hall", Type: domain.ResourceVenue, Capacity: 2, FitnessScore: 0.95},
	}
}

func eventInputs() domain.PlanInputs {
	return domain.PlanInputs{
		Feeds:      eventFeeds(),
		Anchor:     domain.EventAnchor{EventDate: eventDate},
		Candidates: eventCandidates(),
	}
}
