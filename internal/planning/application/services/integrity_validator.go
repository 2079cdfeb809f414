package services

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// IntegrityValidator checks the merged graph for dependency cycles before
// any downstream stage runs. A cycle is the one unrecoverable input error:
// no partial order exists, so the run aborts with a CycleError naming the
// offending path.
type IntegrityValidator struct {
	logger *slog.Logger
}

// NewIntegrityValidator creates an integrity validator.
func NewIntegrityValidator(logger *slog.Logger) *IntegrityValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityValidator{logger: logger}
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	done
)

// Validate runs a depth-first search over the dependency edges. Roots are
// visited in id order so the reported cycle witness is stable across runs.
func (v *IntegrityValidator) Validate(ctx context.Context, graph *domain.TaskGraph) error {
	states := make(map[domain.TaskID]visitState, graph.Len())
	var stack []domain.TaskID

	var visit func(id domain.TaskID) *domain.CycleError
	visit = func(id domain.TaskID) *domain.CycleError {
		states[id] = inProgress
		stack = append(stack, id)

		task, _ := graph.Task(id)
		for _, dep := range task.DependencyIDs() {
			switch states[dep] {
			case done:
				continue
			case inProgress:
				return cycleFromStack(stack, dep)
			default:
				if cerr := visit(dep); cerr != nil {
					return cerr
				}
			}
		}

		stack = stack[:len(stack)-1]
		states[id] = done
		return nil
	}

	for _, id := range graph.IDs() {
		if states[id] != unvisited {
			continue
		}
		if cerr := visit(id); cerr != nil {
			v.logger.Error("dependency cycle detected",
				"path", cerr.Path,
			)
			return cerr
		}
	}
	return nil
}

// cycleFromStack slices the DFS stack from the first occurrence of the
// repeated id and closes the loop, e.g. [a b c] with repeat b -> b c b.
func cycleFromStack(stack []domain.TaskID, repeat domain.TaskID) *domain.CycleError {
	start := 0
	for i, id := range stack {
		if id == repeat {
			start = i
			break
		}
	}
	path := make([]domain.TaskID, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	path = append(path, repeat)
	return &domain.CycleError{Path: path}
}
