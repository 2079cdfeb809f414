package domain

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

var ErrTooFewAffectedTasks = errors.New("a conflict must reference at least two tasks")

// ConflictType represents the kind of scheduling conflict.
type ConflictType string

const (
	// ConflictTimeline indicates overlapping task windows competing for the
	// same personnel or equipment.
	ConflictTimeline ConflictType = "timeline"
	// ConflictResource indicates aggregate demand exceeding availability in
	// a time window.
	ConflictResource ConflictType = "resource"
	// ConflictVenue indicates two tasks requiring exclusive venue use at
	// the same time.
	ConflictVenue ConflictType = "venue"
)

// Severity ranks how disruptive a conflict is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// Weight returns a numeric weight for sorting (higher = more severe).
func (s Severity) Weight() int { return int(s) }

// Conflict is an immutable record of a detected scheduling conflict.
// Resolving a conflict is an external, human-triggered action that re-runs
// the pipeline with updated inputs; the record itself is never edited.
type Conflict struct {
	id              uuid.UUID
	conflictType    ConflictType
	severity        Severity
	affectedTaskIDs []TaskID
	description     string
	resolutions     []string
	window          TimeRange
}

// NewConflict creates a conflict referencing the affected tasks. The
// affected set is stored sorted by id so detector output never depends on
// discovery order.
func NewConflict(
	conflictType ConflictType,
	severity Severity,
	affected []TaskID,
	description string,
	resolutions []string,
	window TimeRange,
) (*Conflict, error) {
	if len(affected) < 2 {
		return nil, ErrTooFewAffectedTasks
	}
	ids := append([]TaskID(nil), affected...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &Conflict{
		id:              uuid.New(),
		conflictType:    conflictType,
		severity:        severity,
		affectedTaskIDs: ids,
		description:     description,
		resolutions:     append([]string(nil), resolutions...),
		window:          window,
	}, nil
}

func (c *Conflict) ID() uuid.UUID              { return c.id }
func (c *Conflict) Type() ConflictType         { return c.conflictType }
func (c *Conflict) Severity() Severity         { return c.severity }
func (c *Conflict) Description() string        { return c.description }
func (c *Conflict) Window() TimeRange          { return c.window }

// AffectedTaskIDs returns the sorted affected task ids.
func (c *Conflict) AffectedTaskIDs() []TaskID {
	out := make([]TaskID, len(c.affectedTaskIDs))
	copy(out, c.affectedTaskIDs)
	return out
}

// SuggestedResolutions returns the ordered, best-first resolution hints.
func (c *Conflict) SuggestedResolutions() []string {
	out := make([]string, len(c.resolutions))
	copy(out, c.resolutions)
	return out
}

// Involves reports whether the conflict references the given task.
func (c *Conflict) Involves(id TaskID) bool {
	for _, t := range c.affectedTaskIDs {
		if t == id {
			return true
		}
	}
	return false
}

// SortConflicts orders conflicts deterministically: severity descending,
// then type, then affected task ids, then description. Output order must
// not depend on detection or worker scheduling order.
func SortConflicts(conflicts []*Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.severity != b.severity {
			return a.severity > b.severity
		}
		if a.conflictType != b.conflictType {
			return a.conflictType < b.conflictType
		}
		an, bn := a.affectedTaskIDs, b.affectedTaskIDs
		for k := 0; k < len(an) && k < len(bn); k++ {
			if an[k] != bn[k] {
				return an[k] < bn[k]
			}
		}
		if len(an) != len(bn) {
			return len(an) < len(bn)
		}
		return a.description < b.description
	})
}
