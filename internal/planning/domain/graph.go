package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyGraph   = errors.New("task graph contains no tasks")
	ErrTaskNotFound = errors.New("task not found in graph")
)

// TaskGraph is an arena of tasks indexed by stable id. All task-to-task
// references (dependencies, parent, children) are plain ids resolved
// against the arena, never embedded pointers.
type TaskGraph struct {
	tasks map[TaskID]*Task
}

// NewTaskGraph creates an empty graph.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{tasks: make(map[TaskID]*Task)}
}

// Add inserts a task into the arena.
func (g *TaskGraph) Add(t *Task) error {
	if _, exists := g.tasks[t.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID())
	}
	g.tasks[t.ID()] = t
	return nil
}

// Task returns the task with the given id.
func (g *TaskGraph) Task(id TaskID) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Len returns the number of tasks in the graph.
func (g *TaskGraph) Len() int { return len(g.tasks) }

// IDs returns all task ids in ascending order.
func (g *TaskGraph) IDs() []TaskID {
	ids := make([]TaskID, 0, len(g.tasks))
	for id := range g.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tasks returns all tasks ordered by id.
func (g *TaskGraph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.tasks))
	for _, id := range g.IDs() {
		out = append(out, g.tasks[id])
	}
	return out
}

// DeriveChildren rebuilds every task's child list from the parent
// references. Child lists are derived state, ordered by id.
func (g *TaskGraph) DeriveChildren() {
	children := make(map[TaskID][]TaskID)
	for _, id := range g.IDs() {
		t := g.tasks[id]
		if parent := t.ParentID(); parent != "" {
			children[parent] = append(children[parent], id)
		}
	}
	for id, t := range g.tasks {
		t.setChildIDs(children[id])
	}
}

// Clone returns a deep copy of the graph; annotating stages work on their
// own clone so each stage's input remains a stable snapshot.
func (g *TaskGraph) Clone() *TaskGraph {
	dup := NewTaskGraph()
	for id, t := range g.tasks {
		dup.tasks[id] = t.Clone()
	}
	return dup
}

// CycleError is the fatal validation failure for cyclic dependencies. Path
// holds the ordered cycle with the entry node repeated at the end.
type CycleError struct {
	Path []TaskID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return "dependency cycle detected: " + strings.Join(parts, " -> ")
}
