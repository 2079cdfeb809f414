package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPlanInputs(t *testing.T) {
	t.Run("full input converts to domain types", func(t *testing.T) {
		path := writeInput(t, `{
			"event_name": "Summer Gala",
			"event_date": "2026-06-20T18:00:00Z",
			"milestones": [
				{"task_id": "ceremony", "start_time": "2026-06-20T10:00:00Z"}
			],
			"priority": {
				"venue_booking": {"name": "Book venue", "priority_level": "critical", "priority_score": 95}
			},
			"granularity": {
				"venue_booking": {"granularity_level": 0}
			},
			"dependency": {
				"venue_booking": {
					"estimated_duration": "48h",
					"requirements": [{"type": "venue", "quantity": 1}],
					"scheduling_policy": "asap"
				}
			},
			"candidates": [
				{"id": "venue-1", "name": "Grand Hall", "type": "venue", "capacity": 2,
				 "fitness_score": 0.95, "task_affinity": {"venue_booking": 0.99}}
			],
			"availability": {
				"personnel": [
					{"start": "2026-05-20T08:00:00Z", "end": "2026-06-21T00:00:00Z", "quantity": 6}
				]
			}
		}`)

		name, inputs, err := loadPlanInputs(path)
		require.NoError(t, err)
		assert.Equal(t, "Summer Gala", name)

		entry := inputs.Feeds.Dependency["venue_booking"]
		assert.Equal(t, 48*time.Hour, entry.EstimatedDuration)
		assert.Equal(t, domain.PolicyASAP, entry.SchedulingPolicy)
		require.Len(t, entry.Requirements, 1)
		assert.Equal(t, domain.ResourceVenue, entry.Requirements[0].Type)

		assert.Equal(t, time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC), inputs.Anchor.EventDate)
		pinned, ok := inputs.Anchor.PinnedStart("ceremony")
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC), pinned)

		require.Len(t, inputs.Candidates, 1)
		assert.Equal(t, 0.99, inputs.Candidates[0].FitnessFor("venue_booking"))

		capacity, known := inputs.Availability.CapacityDuring(domain.ResourcePersonnel, domain.TimeRange{
			Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
		})
		require.True(t, known)
		assert.Equal(t, 6, capacity)
	})

	t.Run("missing event date is rejected", func(t *testing.T) {
		path := writeInput(t, `{"event_name": "Gala", "priority": {}}`)
		_, _, err := loadPlanInputs(path)
		assert.ErrorContains(t, err, "event_date")
	})

	t.Run("bad duration names the task", func(t *testing.T) {
		path := writeInput(t, `{
			"event_date": "2026-06-20T18:00:00Z",
			"dependency": {"setup": {"estimated_duration": "two days"}}
		}`)
		_, _, err := loadPlanInputs(path)
		assert.ErrorContains(t, err, "setup")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := loadPlanInputs(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
