package consultant

import (
	"time"

	"assignment-scanner/internal/domain/job"

	"github.com/google/uuid"
)

// ProfileIn is upserted by Name. Keying consultants by display name is an
// accepted simplification: the pool is small and names are curated by hand.
type ProfileIn struct {
	Name             string
	Role             string
	Seniority        string
	Skills           []string
	Languages        []string
	LocationCity     string
	LocationCountry  string
	OnsiteMode       job.OnsiteMode
	AvailabilityFrom *time.Time
	Notes            string
	Active           bool
}

type Profile struct {
	ProfileIn

	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
