package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/planning/application/services"
	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("full event preparation run", func(t *testing.T) {
		pipeline := services.NewDefaultPipeline(discardLogger())

		result, err := pipeline.Run(ctx, eventInputs())
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, 5, result.Summary.TotalTasks)
		assert.Len(t, result.Tasks, 5)

		// Venue booking gates everything, so it leads the ordered output.
		assert.Equal(t, domain.TaskID("venue_booking"), result.Tasks[0].ID)

		for _, task := range result.Tasks {
			require.NotNil(t, task.Schedule, "task %s must be scheduled", task.ID)
		}

		// The ceremony runs last and ends at the event date.
		ceremony, ok := result.TaskByID("ceremony")
		require.True(t, ok)
		assert.True(t, ceremony.Schedule.EndTime.Equal(eventDate))

		// All six stages report a status.
		assert.Len(t, result.Summary.Stages, 6)
		assert.Equal(t, domain.StageOK, result.Summary.Stages[domain.StageIntegrityValidator])
	})

	t.Run("schedule consistency holds end to end", func(t *testing.T) {
		pipeline := services.NewDefaultPipeline(discardLogger())
		result, err := pipeline.Run(ctx, eventInputs())
		require.NoError(t, err)

		byID := make(map[domain.TaskID]domain.ExtendedTask)
		for _, task := range result.Tasks {
			byID[task.ID] = task
		}
		for _, task := range result.Tasks {
			for _, dep := range task.DependencyIDs {
				prereq := byID[dep]
				assert.False(t, prereq.Schedule.EndTime.After(task.Schedule.StartTime),
					"%s must start after %s ends", task.ID, dep)
			}
		}
	})

	t.Run("vendor assignments cover vendor and venue requirements", func(t *testing.T) {
		pipeline := services.NewDefaultPipeline(discardLogger())
		result, err := pipeline.Run(ctx, eventInputs())
		require.NoError(t, err)

		catering, ok := result.TaskByID("catering_setup")
		require.True(t, ok)
		require.Len(t, catering.Assignments, 1)
		assert.Equal(t, "vendor-cater-1", catering.Assignments[0].VendorID)

		booking, ok := result.TaskByID("venue_booking")
		require.True(t, ok)
		assert.Equal(t, "Grand Hall", booking.VenueInfo)
	})

	t.Run("cycle aborts the run", func(t *testing.T) {
		inputs := eventInputs()
		entry := inputs.Feeds.Dependency["venue_booking"]
		entry.DependencyIDs = []domain.TaskID{"ceremony"}
		inputs.Feeds.Dependency["venue_booking"] = entry

		pipeline := services.NewDefaultPipeline(discardLogger())
		result, err := pipeline.Run(ctx, inputs)
		assert.Nil(t, result)

		var cerr *domain.CycleError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("empty inputs abort the run", func(t *testing.T) {
		pipeline := services.NewDefaultPipeline(discardLogger())
		result, err := pipeline.Run(ctx, domain.PlanInputs{})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrEmptyGraph)
	})

	t.Run("no candidates degrades instead of failing", func(t *testing.T) {
		inputs := eventInputs()
		inputs.Candidates = nil

		pipeline := services.NewDefaultPipeline(discardLogger())
		result, err := pipeline.Run(ctx, inputs)
		require.NoError(t, err)

		catering, ok := result.TaskByID("catering_setup")
		require.True(t, ok)
		require.NotEmpty(t, catering.Assignments)
		assert.True(t, catering.Assignments[0].RequiresManualAssignment)
		assert.True(t, catering.StatusFlags.RequiresManualReview)
		assert.Positive(t, result.Summary.TasksRequiringReview)
		assert.Equal(t, domain.StageDegraded, result.Summary.Stages[domain.StageVendorAssigner])
	})

	t.Run("schedules and assignments are byte-identical across runs", func(t *testing.T) {
		pipeline := services.NewDefaultPipeline(discardLogger())

		type stable struct {
			ID          domain.TaskID
			Schedule    *domain.TaskSchedule
			Assignments []domain.VendorAssignment
		}

		var first []byte
		for i := 0; i < 5; i++ {
			result, err := pipeline.Run(ctx, eventInputs())
			require.NoError(t, err)

			out := make([]stable, 0, len(result.Tasks))
			for _, task := range result.Tasks {
				out = append(out, stable{ID: task.ID, Schedule: task.Schedule, Assignments: task.Assignments})
			}
			payload, err := json.Marshal(out)
			require.NoError(t, err)

			if first == nil {
				first = payload
				continue
			}
			assert.Equal(t, string(first), string(payload))
		}
	})
}
