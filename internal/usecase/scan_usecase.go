package usecase

import (
	"context"
	"errors"
	"time"

	"assignment-scanner/internal/domain/scanning"
	"assignment-scanner/internal/repository"
	"assignment-scanner/internal/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrConfigNotFound = errors.New("scanning config not found")

// ScanUsecase runs scan cycles: scrape every enabled source for every active
// configuration, persist the postings, then match them against the
// consultant pool.
type ScanUsecase interface {
	RunCycle(ctx context.Context) ([]CycleResult, error)
	RunConfig(ctx context.Context, configID uuid.UUID) (CycleResult, error)
}

// CycleResult reports one configuration's pass through its sources.
// SourcesScanned lists the sources that actually ran, failed ones included;
// sources disabled by an override never appear here.
type CycleResult struct {
	ConfigID         uuid.UUID
	ConfigName       string
	JobsFound        int
	MatchesGenerated int
	QualityScore     float64
	SourcesScanned   []string
	SourceErrors     map[string]error
}

type Scan struct {
	configs     repository.ScanningConfigRepository
	jobs        repository.JobRepository
	performance repository.PerformanceRepository
	matcher     MatchingUsecase
	registry    *scraper.Registry
	log         *zap.Logger

	minScore   float64
	maxResults int
	now        func() time.Time
}

func NewScanUsecase(
	configs repository.ScanningConfigRepository,
	jobs repository.JobRepository,
	performance repository.PerformanceRepository,
	matcher MatchingUsecase,
	registry *scraper.Registry,
	minScore float64,
	maxResults int,
	log *zap.Logger,
) *Scan {
	if log == nil {
		log = zap.NewNop()
	}
	if registry == nil {
		registry = scraper.DefaultRegistry()
	}
	if minScore <= 0 {
		minScore = 0.5
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Scan{
		configs:     configs,
		jobs:        jobs,
		performance: performance,
		matcher:     matcher,
		registry:    registry,
		log:         log,
		minScore:    minScore,
		maxResults:  maxResults,
		now:         time.Now,
	}
}

// RunCycle runs every active configuration. A configuration that fails
// outright is logged and skipped; the cycle itself only fails when the
// configurations cannot be loaded at all.
func (u *Scan) RunCycle(ctx context.Context) ([]CycleResult, error) {
	configs, err := u.configs.GetActiveConfigs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]CycleResult, 0, len(configs))
	for _, cfg := range configs {
		res, err := u.runOne(ctx, cfg)
		if err != nil {
			u.log.Error("scan cycle failed for config",
				zap.String("config", cfg.Name), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// RunConfig runs a single configuration regardless of its Active flag. Used
// by the manual trigger.
func (u *Scan) RunConfig(ctx context.Context, configID uuid.UUID) (CycleResult, error) {
	cfg, err := u.configs.GetConfig(ctx, configID)
	if err != nil {
		return CycleResult{}, err
	}
	if cfg == nil {
		return CycleResult{}, ErrConfigNotFound
	}
	return u.runOne(ctx, *cfg)
}

func (u *Scan) runOne(ctx context.Context, cfg scanning.Config) (CycleResult, error) {
	overrides, err := u.configs.GetSourceOverrides(ctx, cfg.ID)
	if err != nil {
		return CycleResult{}, err
	}
	overrideBySource := make(map[string]scanning.SourceOverride, len(overrides))
	for _, o := range overrides {
		overrideBySource[o.SourceName] = o
	}

	res := CycleResult{
		ConfigID:     cfg.ID,
		ConfigName:   cfg.Name,
		SourceErrors: map[string]error{},
	}
	newJobIDs := make([]uuid.UUID, 0, 64)

	for _, sourceName := range u.registry.Names() {
		params := cfg.Params
		if o, ok := overrideBySource[sourceName]; ok {
			if !o.IsEnabled {
				continue
			}
			params = params.Merge(o.Params)
		}

		src, ok := u.registry.Build(sourceName, params, u.log)
		if !ok {
			continue
		}
		res.SourcesScanned = append(res.SourcesScanned, sourceName)

		postings, err := src.Scrape(ctx)
		if err != nil {
			// A broken portal must not sink the cycle.
			res.SourceErrors[sourceName] = err
			u.log.Warn("source scrape failed",
				zap.String("source", sourceName),
				zap.String("config", cfg.Name),
				zap.Error(err))
			continue
		}

		stored := 0
		for _, p := range postings {
			persisted, err := u.jobs.UpsertJob(ctx, p)
			if err != nil {
				u.log.Warn("job upsert failed",
					zap.String("job_uid", p.JobUID), zap.Error(err))
				continue
			}
			stored++
			newJobIDs = append(newJobIDs, persisted.ID)
		}
		res.JobsFound += stored
	}

	if len(newJobIDs) > 0 && u.matcher != nil {
		summary, err := u.matcher.RunMatching(ctx, newJobIDs, nil, u.minScore, u.maxResults)
		if err != nil {
			u.log.Error("matching after scan failed",
				zap.String("config", cfg.Name), zap.Error(err))
		} else {
			res.MatchesGenerated = summary.MatchesStored
		}
	}

	res.QualityScore = qualityScore(res.JobsFound, res.MatchesGenerated)

	if err := u.performance.LogConfigPerformance(ctx, scanning.PerformanceLogEntry{
		ConfigID:         cfg.ID,
		ScanDate:         u.now().UTC(),
		JobsFound:        res.JobsFound,
		MatchesGenerated: res.MatchesGenerated,
		QualityScore:     res.QualityScore,
	}); err != nil {
		u.log.Error("performance log write failed",
			zap.String("config", cfg.Name), zap.Error(err))
	}

	u.updateSourceStats(ctx, cfg.ID, res)

	u.log.Info("scan cycle finished",
		zap.String("config", cfg.Name),
		zap.Int("jobs_found", res.JobsFound),
		zap.Int("matches_generated", res.MatchesGenerated),
		zap.Float64("quality_score", res.QualityScore))
	return res, nil
}

// updateSourceStats folds this cycle's outcome into the per-source rolling
// averages. Only sources that actually ran are touched: a disabled source
// keeps its stats untouched rather than being credited a phantom run.
func (u *Scan) updateSourceStats(ctx context.Context, configID uuid.UUID, res CycleResult) {
	names := res.SourcesScanned
	if len(names) == 0 {
		return
	}
	avgMatches := float64(res.MatchesGenerated) / float64(len(names))
	for _, name := range names {
		success := 1.0
		if _, failed := res.SourceErrors[name]; failed {
			success = 0.0
		}
		if err := u.configs.UpdateSourcePerformance(ctx, configID, name, success, avgMatches); err != nil {
			u.log.Warn("source stats update failed",
				zap.String("source", name), zap.Error(err))
		}
	}
}

// qualityScore is matches per job found. The denominator is floored at one
// so an empty scan yields zero rather than dividing by zero.
func qualityScore(jobsFound, matchesGenerated int) float64 {
	denom := jobsFound
	if denom < 1 {
		denom = 1
	}
	return float64(matchesGenerated) / float64(denom)
}
