package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// PlanInputs bundles everything a pipeline run consumes. All external data
// is materialized here before the run starts; the engine performs no I/O
// mid-computation.
type PlanInputs struct {
	Feeds        TaskAttributeFeeds        `json:"feeds"`
	Anchor       EventAnchor               `json:"anchor"`
	Candidates   []Candidate               `json:"candidates,omitempty"`
	Availability ResourceAvailabilityTable `json:"availability,omitempty"`
}

// Fingerprint returns a stable content hash of the run inputs, used for
// cache keying and idempotent re-runs. encoding/json writes map keys in
// sorted order, so identical inputs always produce identical bytes.
func (in PlanInputs) Fingerprint() string {
	payload, err := json.Marshal(in)
	if err != nil {
		// All input types are plain data; marshalling cannot fail at
		// runtime. An empty fingerprint just disables caching.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
