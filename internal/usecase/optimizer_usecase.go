package usecase

import (
	"context"
	"time"

	"assignment-scanner/internal/domain/scanning"
	"assignment-scanner/internal/repository"

	"go.uber.org/zap"
)

const (
	// optimizerWindow is how far back cycle history counts toward a
	// configuration's performance score.
	optimizerWindow = 30 * 24 * time.Hour

	// learnThreshold is the quality a cycle must exceed before its
	// parameters are promoted to the learned set.
	learnThreshold = 0.7
)

// OptimizerUsecase recomputes configuration performance scores from recent
// cycle history and promotes parameters from high-quality cycles. It only
// ever adds to the learned set; configurations are never mutated.
type OptimizerUsecase interface {
	Optimize(ctx context.Context) (OptimizeSummary, error)
	TopLearnedParameters(ctx context.Context, limit int) ([]scanning.LearnedParameter, error)
}

type OptimizeSummary struct {
	ConfigsScored     int
	ConfigsSkipped    int
	ParametersLearned int
}

type Optimizer struct {
	configs     repository.ScanningConfigRepository
	performance repository.PerformanceRepository
	log         *zap.Logger
}

func NewOptimizerUsecase(
	configs repository.ScanningConfigRepository,
	performance repository.PerformanceRepository,
	log *zap.Logger,
) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{configs: configs, performance: performance, log: log}
}

func (u *Optimizer) Optimize(ctx context.Context) (OptimizeSummary, error) {
	configs, err := u.configs.GetAllConfigs(ctx)
	if err != nil {
		return OptimizeSummary{}, err
	}

	var summary OptimizeSummary
	for _, cfg := range configs {
		history, err := u.performance.GetPerformanceHistory(ctx, cfg.ID, optimizerWindow)
		if err != nil {
			u.log.Error("performance history load failed",
				zap.String("config", cfg.Name), zap.Error(err))
			summary.ConfigsSkipped++
			continue
		}
		if len(history) == 0 {
			// No data in the window. Keep the existing score untouched.
			summary.ConfigsSkipped++
			continue
		}

		score := averageQuality(history)
		if err := u.performance.UpdateConfigPerformanceScore(ctx, cfg.ID, score); err != nil {
			u.log.Error("performance score update failed",
				zap.String("config", cfg.Name), zap.Error(err))
			summary.ConfigsSkipped++
			continue
		}
		summary.ConfigsScored++

		best := bestQualityAbove(history, learnThreshold)
		if best <= 0 {
			continue
		}
		learned := u.promoteParams(ctx, cfg, best)
		summary.ParametersLearned += learned

		u.log.Info("config optimized",
			zap.String("config", cfg.Name),
			zap.Float64("score", score),
			zap.Int("parameters_learned", learned))
	}
	return summary, nil
}

func (u *Optimizer) TopLearnedParameters(ctx context.Context, limit int) ([]scanning.LearnedParameter, error) {
	if limit <= 0 {
		limit = 20
	}
	return u.performance.TopLearnedParameters(ctx, limit)
}

// promoteParams records the config's targeting values as learned parameters
// with the best in-window quality as effectiveness. Upserting an existing
// value raises its effectiveness and bumps its use count.
func (u *Optimizer) promoteParams(ctx context.Context, cfg scanning.Config, effectiveness float64) int {
	groups := []struct {
		name   string
		values []string
	}{
		{"target_skills", cfg.Params.TargetSkills},
		{"target_roles", cfg.Params.TargetRoles},
		{"target_locations", cfg.Params.TargetLocations},
	}

	learned := 0
	for _, g := range groups {
		for _, value := range g.values {
			if value == "" {
				continue
			}
			if err := u.performance.UpsertLearnedParameter(ctx, g.name, value, effectiveness, cfg.ID); err != nil {
				u.log.Warn("learned parameter upsert failed",
					zap.String("parameter", g.name),
					zap.String("value", value),
					zap.Error(err))
				continue
			}
			learned++
		}
	}
	return learned
}

func averageQuality(history []scanning.PerformanceLogEntry) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, e := range history {
		sum += e.QualityScore
	}
	return sum / float64(len(history))
}

// bestQualityAbove returns the highest quality among entries exceeding the
// threshold, or 0 when none qualify.
func bestQualityAbove(history []scanning.PerformanceLogEntry, threshold float64) float64 {
	best := 0.0
	for _, e := range history {
		if e.QualityScore > threshold && e.QualityScore > best {
			best = e.QualityScore
		}
	}
	return best
}
