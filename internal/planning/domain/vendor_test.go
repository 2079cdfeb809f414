package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func TestCandidatePool(t *testing.T) {
	pool := domain.NewCandidatePool([]domain.Candidate{
		{ID: "v1", Type: domain.ResourceVendor, Capacity: 2},
		{ID: "v2", Type: domain.ResourceVendor}, // zero capacity counts as one
		{ID: "venue1", Type: domain.ResourceVenue, Capacity: 1},
	})

	assert.Len(t, pool.Available(domain.ResourceVendor), 2)
	assert.Len(t, pool.Available(domain.ResourceVenue), 1)

	assert.True(t, pool.Reserve("v1"))
	assert.Equal(t, 1, pool.Remaining("v1"))
	assert.True(t, pool.Reserve("v1"))
	assert.False(t, pool.Reserve("v1"), "capacity exhausted")
	assert.Len(t, pool.Available(domain.ResourceVendor), 1)

	assert.True(t, pool.Reserve("v2"))
	assert.False(t, pool.Reserve("v2"))
}

func TestCandidate_FitnessFor(t *testing.T) {
	c := domain.Candidate{
		ID:           "v1",
		FitnessScore: 0.5,
		TaskAffinity: map[domain.TaskID]float64{"special": 0.9},
	}
	assert.Equal(t, 0.9, c.FitnessFor("special"))
	assert.Equal(t, 0.5, c.FitnessFor("other"))
}

func TestResourceAvailabilityTable_CapacityDuring(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return base.AddDate(0, 0, d) }

	table := domain.ResourceAvailabilityTable{
		domain.ResourcePersonnel: {
			{Window: domain.TimeRange{Start: day(0), End: day(10)}, Quantity: 6},
			{Window: domain.TimeRange{Start: day(10), End: day(20)}, Quantity: 2},
		},
	}

	t.Run("minimum over overlapping windows", func(t *testing.T) {
		capacity, ok := table.CapacityDuring(domain.ResourcePersonnel,
			domain.TimeRange{Start: day(8), End: day(12)})
		assert.True(t, ok)
		assert.Equal(t, 2, capacity)
	})

	t.Run("single window", func(t *testing.T) {
		capacity, ok := table.CapacityDuring(domain.ResourcePersonnel,
			domain.TimeRange{Start: day(1), End: day(2)})
		assert.True(t, ok)
		assert.Equal(t, 6, capacity)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, ok := table.CapacityDuring(domain.ResourceEquipment,
			domain.TimeRange{Start: day(1), End: day(2)})
		assert.False(t, ok)
	})

	t.Run("no overlapping window", func(t *testing.T) {
		_, ok := table.CapacityDuring(domain.ResourcePersonnel,
			domain.TimeRange{Start: day(25), End: day(26)})
		assert.False(t, ok)
	})
}

func TestEventAnchor_PinnedStart(t *testing.T) {
	anchor := domain.EventAnchor{
		EventDate: time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC),
		Milestones: []domain.Milestone{
			{TaskID: "ceremony", StartTime: time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC)},
		},
	}

	pinned, ok := anchor.PinnedStart("ceremony")
	assert.True(t, ok)
	assert.Equal(t, 10, pinned.Hour())

	_, ok = anchor.PinnedStart("other")
	assert.False(t, ok)
}
