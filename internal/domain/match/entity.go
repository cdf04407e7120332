package match

import (
	"time"

	"github.com/google/uuid"
)

// Reason explains one match in human-readable terms. It is stored alongside
// the score so the UI never has to re-derive why a pairing was suggested.
type Reason struct {
	Summary           string   `json:"summary"`
	SkillsMatched     []string `json:"skills_matched"`
	SkillsMissing     []string `json:"skills_missing"`
	LanguageMatch     bool     `json:"language_match"`
	LocationMatch     bool     `json:"location_match"`
	AvailabilityMatch bool     `json:"availability_match"`
	Strengths         []string `json:"strengths"`
	Concerns          []string `json:"concerns"`
}

// Match is unique per (JobID, ConsultantID); re-scoring replaces the row.
type Match struct {
	ID           uuid.UUID
	JobID        uuid.UUID
	ConsultantID uuid.UUID
	Score        float64
	Reason       Reason
	CreatedAt    time.Time
}
