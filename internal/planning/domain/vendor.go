package domain

import "time"

// Candidate is a vendor or venue supplied by the external sourcing
// collaborator. Fitness scores are precomputed upstream; this engine never
// computes fitness itself.
type Candidate struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         ResourceType `json:"type"`
	Capacity     int          `json:"capacity"`
	FitnessScore float64      `json:"fitness_score"`
	// TaskAffinity optionally overrides FitnessScore for specific tasks.
	TaskAffinity map[TaskID]float64 `json:"task_affinity,omitempty"`
}

// FitnessFor returns the candidate's fitness for a specific task.
func (c Candidate) FitnessFor(id TaskID) float64 {
	if score, ok := c.TaskAffinity[id]; ok {
		return score
	}
	return c.FitnessScore
}

// CandidatePool tracks remaining capacity of candidates during assignment.
type CandidatePool struct {
	candidates []Candidate
	remaining  map[string]int
}

// NewCandidatePool creates a capacity-tracked pool. Candidates with
// non-positive capacity are treated as having capacity for one booking.
func NewCandidatePool(candidates []Candidate) *CandidatePool {
	pool := &CandidatePool{
		candidates: append([]Candidate(nil), candidates...),
		remaining:  make(map[string]int, len(candidates)),
	}
	for _, c := range pool.candidates {
		capacity := c.Capacity
		if capacity <= 0 {
			capacity = 1
		}
		pool.remaining[c.ID] = capacity
	}
	return pool
}

// Available returns candidates of the given type with remaining capacity.
func (p *CandidatePool) Available(t ResourceType) []Candidate {
	out := make([]Candidate, 0)
	for _, c := range p.candidates {
		if c.Type == t && p.remaining[c.ID] > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Reserve decrements the remaining capacity of a candidate.
func (p *CandidatePool) Reserve(id string) bool {
	if p.remaining[id] <= 0 {
		return false
	}
	p.remaining[id]--
	return true
}

// Remaining returns a candidate's remaining capacity.
func (p *CandidatePool) Remaining(id string) int { return p.remaining[id] }

// VendorAssignment records the outcome of matching one task requirement
// against the candidate pool.
type VendorAssignment struct {
	TaskID                   TaskID       `json:"task_id"`
	VendorID                 string       `json:"vendor_id,omitempty"`
	VendorName               string       `json:"vendor_name,omitempty"`
	VendorType               ResourceType `json:"vendor_type"`
	FitnessScore             float64      `json:"fitness_score"`
	Rationale                string       `json:"rationale"`
	RequiresManualAssignment bool         `json:"requires_manual_assignment"`
}

// AvailabilityWindow states how much of a resource exists during a window.
type AvailabilityWindow struct {
	Window   TimeRange `json:"window"`
	Quantity int       `json:"quantity"`
}

// ResourceAvailabilityTable maps resource types to externally supplied
// availability windows. Types absent from the table fall back to the
// detector's default capacity.
type ResourceAvailabilityTable map[ResourceType][]AvailabilityWindow

// CapacityDuring returns the smallest available quantity over windows
// overlapping the given range, and whether the table knows the resource.
func (t ResourceAvailabilityTable) CapacityDuring(rt ResourceType, window TimeRange) (int, bool) {
	windows, ok := t[rt]
	if !ok || len(windows) == 0 {
		return 0, false
	}
	capacity := -1
	for _, w := range windows {
		if !w.Window.Overlaps(window) {
			continue
		}
		if capacity < 0 || w.Quantity < capacity {
			capacity = w.Quantity
		}
	}
	if capacity < 0 {
		return 0, false
	}
	return capacity, true
}

// Milestone pins a task to an externally fixed start time.
type Milestone struct {
	TaskID    TaskID    `json:"task_id"`
	StartTime time.Time `json:"start_time"`
}

// EventAnchor is the fixed event date plus externally pinned milestones.
type EventAnchor struct {
	EventDate  time.Time   `json:"event_date"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// PinnedStart returns the fixed start time for a task, if pinned.
func (a EventAnchor) PinnedStart(id TaskID) (time.Time, bool) {
	for _, m := range a.Milestones {
		if m.TaskID == id {
			return m.StartTime, true
		}
	}
	return time.Time{}, false
}
