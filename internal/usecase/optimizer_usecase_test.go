package usecase

import (
	"context"
	"testing"
	"time"

	"assignment-scanner/internal/domain/scanning"

	"github.com/google/uuid"
)

func logEntry(configID uuid.UUID, age time.Duration, quality float64) scanning.PerformanceLogEntry {
	return scanning.PerformanceLogEntry{
		ID:           uuid.New(),
		ConfigID:     configID,
		ScanDate:     time.Now().UTC().Add(-age),
		QualityScore: quality,
	}
}

func TestOptimizeAveragesWindowQuality(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("default")
	configs.configs = append(configs.configs, cfg)

	perf := newFakePerformanceRepo()
	perf.entries = append(perf.entries,
		logEntry(cfg.ID, 24*time.Hour, 0.4),
		logEntry(cfg.ID, 48*time.Hour, 0.6),
		// outside the 30-day window, must not count
		logEntry(cfg.ID, 40*24*time.Hour, 0.0),
	)

	uc := NewOptimizerUsecase(configs, perf, nil)
	summary, err := uc.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if summary.ConfigsScored != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	got := perf.scores[cfg.ID]
	if got < 0.499 || got > 0.501 {
		t.Fatalf("score = %v, want 0.5", got)
	}
}

func TestOptimizeSkipsConfigWithoutHistory(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("idle")
	cfg.PerformanceScore = 0.42
	configs.configs = append(configs.configs, cfg)

	perf := newFakePerformanceRepo()

	uc := NewOptimizerUsecase(configs, perf, nil)
	summary, err := uc.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if summary.ConfigsSkipped != 1 || summary.ConfigsScored != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, touched := perf.scores[cfg.ID]; touched {
		t.Fatal("score must stay untouched without window data")
	}
}

func TestOptimizePromotesHighQualityParams(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("hot")
	cfg.Params = scanning.ScanParams{
		TargetSkills:    []string{"Go", "Kubernetes"},
		TargetRoles:     []string{"Backend Developer"},
		TargetLocations: []string{"Stockholm"},
	}
	configs.configs = append(configs.configs, cfg)

	perf := newFakePerformanceRepo()
	perf.entries = append(perf.entries,
		logEntry(cfg.ID, 24*time.Hour, 0.9),
		logEntry(cfg.ID, 48*time.Hour, 0.75),
	)

	uc := NewOptimizerUsecase(configs, perf, nil)
	summary, err := uc.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if summary.ParametersLearned != 4 {
		t.Fatalf("expected 4 learned parameters, got %d", summary.ParametersLearned)
	}
	lp, ok := perf.learned[learnedKey{name: "target_skills", value: "Go"}]
	if !ok {
		t.Fatal("target_skills/Go missing from learned set")
	}
	if lp.EffectivenessScore != 0.9 {
		t.Fatalf("effectiveness = %v, want best window quality 0.9", lp.EffectivenessScore)
	}
}

func TestOptimizeBelowThresholdLearnsNothing(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("cold")
	configs.configs = append(configs.configs, cfg)

	perf := newFakePerformanceRepo()
	perf.entries = append(perf.entries, logEntry(cfg.ID, 24*time.Hour, 0.7))

	uc := NewOptimizerUsecase(configs, perf, nil)
	summary, err := uc.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	// 0.7 does not exceed the strict threshold
	if summary.ParametersLearned != 0 {
		t.Fatalf("expected no learned parameters, got %d", summary.ParametersLearned)
	}
}

func TestOptimizeRepeatedRunsBumpUseCount(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("hot")
	cfg.Params = scanning.ScanParams{TargetSkills: []string{"Go"}}
	configs.configs = append(configs.configs, cfg)

	perf := newFakePerformanceRepo()
	perf.entries = append(perf.entries, logEntry(cfg.ID, 24*time.Hour, 0.8))

	uc := NewOptimizerUsecase(configs, perf, nil)
	for i := 0; i < 2; i++ {
		if _, err := uc.Optimize(context.Background()); err != nil {
			t.Fatalf("Optimize #%d failed: %v", i+1, err)
		}
	}
	lp := perf.learned[learnedKey{name: "target_skills", value: "Go"}]
	if lp.UseCount != 2 {
		t.Fatalf("use count = %d, want 2", lp.UseCount)
	}
}

func TestTopLearnedParametersDefaultsLimit(t *testing.T) {
	perf := newFakePerformanceRepo()
	uc := NewOptimizerUsecase(newFakeConfigRepo(), perf, nil)
	out, err := uc.TopLearnedParameters(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopLearnedParameters failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
