package scanning

import (
	"time"

	"github.com/google/uuid"
)

// ScanParams is the parameter bundle handed to every source adapter.
type ScanParams struct {
	TargetSkills      []string
	TargetRoles       []string
	TargetLocations   []string
	Languages         []string
	SeniorityLevels   []string
	OnsiteModes       []string
	ContractDurations []string
}

// Merge layers non-empty override fields on top of the receiver. Fields the
// override leaves empty keep the configuration's global values.
func (p ScanParams) Merge(override ScanParams) ScanParams {
	out := p
	if len(override.TargetSkills) > 0 {
		out.TargetSkills = override.TargetSkills
	}
	if len(override.TargetRoles) > 0 {
		out.TargetRoles = override.TargetRoles
	}
	if len(override.TargetLocations) > 0 {
		out.TargetLocations = override.TargetLocations
	}
	if len(override.Languages) > 0 {
		out.Languages = override.Languages
	}
	if len(override.SeniorityLevels) > 0 {
		out.SeniorityLevels = override.SeniorityLevels
	}
	if len(override.OnsiteModes) > 0 {
		out.OnsiteModes = override.OnsiteModes
	}
	if len(override.ContractDurations) > 0 {
		out.ContractDurations = override.ContractDurations
	}
	return out
}

// Config is a named scanning configuration. PerformanceScore is maintained by
// the optimizer; manual edits go through the same upsert path.
type Config struct {
	ID               uuid.UUID
	Name             string
	Params           ScanParams
	PerformanceScore float64
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SourceOverride refines one configuration for one source. At most one row
// exists per (ConfigID, SourceName).
type SourceOverride struct {
	ID             uuid.UUID
	ConfigID       uuid.UUID
	SourceName     string
	IsEnabled      bool
	Params         ScanParams
	SuccessRate    float64
	AvgMatchesRun  float64
	LastScannedAt  *time.Time
}

// PerformanceLogEntry records one scan cycle's yield for a configuration.
// Rows are append-only.
type PerformanceLogEntry struct {
	ID               uuid.UUID
	ConfigID         uuid.UUID
	ScanDate         time.Time
	JobsFound        int
	MatchesGenerated int
	QualityScore     float64
}

// LearnedParameter is a parameter value promoted from a high-quality scan.
type LearnedParameter struct {
	ID                  uuid.UUID
	ParameterName       string
	ParameterValue      string
	EffectivenessScore  float64
	UseCount            int
	LearnedFromConfigID *uuid.UUID
	UpdatedAt           time.Time
}
