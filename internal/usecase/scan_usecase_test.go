package usecase

import (
	"context"
	"errors"
	"testing"

	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/match"
	"assignment-scanner/internal/domain/scanning"
	"assignment-scanner/internal/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeSource struct {
	name     string
	postings []job.PostingIn
	err      error

	gotParams scanning.ScanParams
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Scrape(context.Context) ([]job.PostingIn, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.postings, nil
}

func registryOf(sources ...*fakeSource) *scraper.Registry {
	r := scraper.NewRegistry()
	for _, s := range sources {
		s := s
		r.Register(s.name, func(params scanning.ScanParams, _ *zap.Logger) scraper.Source {
			s.gotParams = params
			return s
		})
	}
	return r
}

type fakeMatcher struct {
	summary MatchingSummary
	err     error

	gotJobIDs []uuid.UUID
}

func (m *fakeMatcher) RunMatching(_ context.Context, jobIDs, _ []uuid.UUID, _ float64, _ int) (MatchingSummary, error) {
	m.gotJobIDs = jobIDs
	if m.err != nil {
		return MatchingSummary{}, m.err
	}
	return m.summary, nil
}

func (m *fakeMatcher) MatchesForJob(context.Context, uuid.UUID, int) ([]match.Match, error) {
	return nil, nil
}

func activeConfig(name string) scanning.Config {
	return scanning.Config{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
		Params: scanning.ScanParams{TargetSkills: []string{"Go"}},
	}
}

func TestRunCycleLogsPerformancePerConfig(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("default")
	configs.configs = append(configs.configs, cfg)

	jobs := newFakeJobRepo()
	perf := newFakePerformanceRepo()
	src := &fakeSource{name: "verama", postings: []job.PostingIn{goJob()}}
	matcher := &fakeMatcher{summary: MatchingSummary{MatchesStored: 2}}

	uc := NewScanUsecase(configs, jobs, perf, matcher, registryOf(src), 0.5, 10, nil)

	results, err := uc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.JobsFound != 1 || res.MatchesGenerated != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.QualityScore != 2.0 {
		t.Fatalf("quality = %v, want matches/jobs = 2.0", res.QualityScore)
	}
	if len(perf.entries) != 1 {
		t.Fatalf("expected exactly one performance entry, got %d", len(perf.entries))
	}
	e := perf.entries[0]
	if e.ConfigID != cfg.ID || e.JobsFound != 1 || e.MatchesGenerated != 2 {
		t.Fatalf("entry = %+v", e)
	}
	if len(matcher.gotJobIDs) != 1 {
		t.Fatalf("matcher should receive the new job ids, got %v", matcher.gotJobIDs)
	}
}

func TestRunCycleEmptyScanQualityZero(t *testing.T) {
	configs := newFakeConfigRepo()
	configs.configs = append(configs.configs, activeConfig("default"))

	perf := newFakePerformanceRepo()
	src := &fakeSource{name: "verama"}

	uc := NewScanUsecase(configs, newFakeJobRepo(), perf, &fakeMatcher{}, registryOf(src), 0.5, 10, nil)

	results, err := uc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if results[0].QualityScore != 0 {
		t.Fatalf("empty scan quality = %v, want 0", results[0].QualityScore)
	}
	if len(perf.entries) != 1 {
		t.Fatal("empty scans are still logged")
	}
}

func TestRunCycleSourceFailureIsIsolated(t *testing.T) {
	configs := newFakeConfigRepo()
	configs.configs = append(configs.configs, activeConfig("default"))

	broken := &fakeSource{name: "brainville", err: errors.New("portal down")}
	working := &fakeSource{name: "verama", postings: []job.PostingIn{goJob()}}
	perf := newFakePerformanceRepo()

	uc := NewScanUsecase(configs, newFakeJobRepo(), perf, &fakeMatcher{}, registryOf(broken, working), 0.5, 10, nil)

	results, err := uc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	res := results[0]
	if res.JobsFound != 1 {
		t.Fatalf("working source must still contribute, got %d jobs", res.JobsFound)
	}
	if _, ok := res.SourceErrors["brainville"]; !ok {
		t.Fatal("broken source error must be recorded")
	}

	// rolling stats: failed source 0.0, working source 1.0
	stats := map[string]float64{}
	for _, u := range configs.perfUpdates {
		stats[u.sourceName] = u.successRate
	}
	if stats["brainville"] != 0.0 || stats["verama"] != 1.0 {
		t.Fatalf("success rates = %v", stats)
	}
}

func TestRunCycleAppliesSourceOverrides(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("default")
	configs.configs = append(configs.configs, cfg)

	disabled := &fakeSource{name: "brainville", postings: []job.PostingIn{goJob()}}
	tuned := &fakeSource{name: "verama"}
	configs.overrides[cfg.ID] = []scanning.SourceOverride{
		{ConfigID: cfg.ID, SourceName: "brainville", IsEnabled: false},
		{ConfigID: cfg.ID, SourceName: "verama", IsEnabled: true,
			Params: scanning.ScanParams{SeniorityLevels: []string{"Expert"}}},
	}

	uc := NewScanUsecase(configs, newFakeJobRepo(), newFakePerformanceRepo(), &fakeMatcher{}, registryOf(disabled, tuned), 0.5, 10, nil)

	results, err := uc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if results[0].JobsFound != 0 {
		t.Fatal("disabled source must be skipped")
	}
	if len(tuned.gotParams.SeniorityLevels) != 1 || tuned.gotParams.SeniorityLevels[0] != "Expert" {
		t.Fatalf("override params not merged: %+v", tuned.gotParams)
	}
	if len(tuned.gotParams.TargetSkills) != 1 || tuned.gotParams.TargetSkills[0] != "Go" {
		t.Fatalf("global params must survive the merge: %+v", tuned.gotParams)
	}
}

func TestRunCycleDisabledSourceStatsUntouched(t *testing.T) {
	configs := newFakeConfigRepo()
	cfg := activeConfig("default")
	configs.configs = append(configs.configs, cfg)

	disabled := &fakeSource{name: "brainville", postings: []job.PostingIn{goJob()}}
	working := &fakeSource{name: "verama", postings: []job.PostingIn{goJob()}}
	configs.overrides[cfg.ID] = []scanning.SourceOverride{
		{ConfigID: cfg.ID, SourceName: "brainville", IsEnabled: false},
	}
	matcher := &fakeMatcher{summary: MatchingSummary{MatchesStored: 3}}

	uc := NewScanUsecase(configs, newFakeJobRepo(), newFakePerformanceRepo(), matcher, registryOf(disabled, working), 0.5, 10, nil)

	results, err := uc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if got := results[0].SourcesScanned; len(got) != 1 || got[0] != "verama" {
		t.Fatalf("sources scanned = %v, want only verama", got)
	}

	for _, u := range configs.perfUpdates {
		if u.sourceName == "brainville" {
			t.Fatalf("disabled source received a stats update: success=%v avgMatches=%v",
				u.successRate, u.avgMatches)
		}
	}
	if len(configs.perfUpdates) != 1 {
		t.Fatalf("expected one stats update, got %d", len(configs.perfUpdates))
	}
	// avg matches is split across sources that ran, not the whole registry
	if got := configs.perfUpdates[0].avgMatches; got != 3.0 {
		t.Fatalf("avg matches = %v, want 3.0", got)
	}
}

func TestRunConfigUnknownID(t *testing.T) {
	uc := NewScanUsecase(newFakeConfigRepo(), newFakeJobRepo(), newFakePerformanceRepo(), &fakeMatcher{}, registryOf(), 0.5, 10, nil)
	if _, err := uc.RunConfig(context.Background(), uuid.New()); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}
