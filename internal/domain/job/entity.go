package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OnsiteMode string

const (
	OnsiteModeOnsite OnsiteMode = "onsite"
	OnsiteModeRemote OnsiteMode = "remote"
	OnsiteModeHybrid OnsiteMode = "hybrid"
)

func ParseOnsiteMode(s string) (OnsiteMode, bool) {
	switch OnsiteMode(strings.ToLower(strings.TrimSpace(s))) {
	case OnsiteModeOnsite:
		return OnsiteModeOnsite, true
	case OnsiteModeRemote:
		return OnsiteModeRemote, true
	case OnsiteModeHybrid:
		return OnsiteModeHybrid, true
	}
	return "", false
}

// PostingIn is a scraped assignment before it has been persisted.
// JobUID is the natural key: upserts by JobUID are idempotent.
type PostingIn struct {
	JobUID          string
	Source          string
	Title           string
	Description     string
	Skills          []string
	Role            string
	Seniority       string
	Languages       []string
	LocationCity    string
	LocationCountry string
	OnsiteMode      OnsiteMode
	Duration        string
	URL             string
	PostedAt        *time.Time
}

type Posting struct {
	PostingIn

	ID        uuid.UUID
	ScrapedAt time.Time
}
