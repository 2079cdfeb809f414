package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/planning/application/services"
	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

func graphOf(t *testing.T, deps map[domain.TaskID][]domain.TaskID) *domain.TaskGraph {
	t.Helper()
	graph := domain.NewTaskGraph()
	for id, d := range deps {
		task, err := domain.NewTask(id, string(id))
		require.NoError(t, err)
		for _, dep := range d {
			task.AddDependency(dep)
		}
		require.NoError(t, graph.Add(task))
	}
	return graph
}

func TestIntegrityValidator_Validate(t *testing.T) {
	validator := services.NewIntegrityValidator(discardLogger())
	ctx := context.Background()

	t.Run("acyclic graph passes", func(t *testing.T) {
		graph := graphOf(t, map[domain.TaskID][]domain.TaskID{
			"a": nil,
			"b": {"a"},
			"c": {"a", "b"},
		})
		assert.NoError(t, validator.Validate(ctx, graph))
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		graph := graphOf(t, map[domain.TaskID][]domain.TaskID{
			"root":  nil,
			"left":  {"root"},
			"right": {"root"},
			"join":  {"left", "right"},
		})
		assert.NoError(t, validator.Validate(ctx, graph))
	})

	t.Run("two-node cycle is fatal with ordered witness", func(t *testing.T) {
		graph := graphOf(t, map[domain.TaskID][]domain.TaskID{
			"a": {"b"},
			"b": {"a"},
		})
		err := validator.Validate(ctx, graph)
		require.Error(t, err)

		var cerr *domain.CycleError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, []domain.TaskID{"a", "b", "a"}, cerr.Path)
		assert.Equal(t, "dependency cycle detected: a -> b -> a", cerr.Error())
	})

	t.Run("cycle witness is stable across runs", func(t *testing.T) {
		deps := map[domain.TaskID][]domain.TaskID{
			"w": {"x"},
			"x": {"y"},
			"y": {"w"},
			"z": nil,
		}
		var first []domain.TaskID
		for i := 0; i < 10; i++ {
			err := validator.Validate(ctx, graphOf(t, deps))
			var cerr *domain.CycleError
			require.ErrorAs(t, err, &cerr)
			if first == nil {
				first = cerr.Path
				continue
			}
			assert.Equal(t, first, cerr.Path)
		}
	})

	t.Run("cycle reachable only through a chain is found", func(t *testing.T) {
		graph := graphOf(t, map[domain.TaskID][]domain.TaskID{
			"entry": {"m"},
			"m":     {"n"},
			"n":     {"m"},
		})
		var cerr *domain.CycleError
		require.ErrorAs(t, validator.Validate(ctx, graph), &cerr)
		assert.Equal(t, []domain.TaskID{"m", "n", "m"}, cerr.Path)
	})
}
