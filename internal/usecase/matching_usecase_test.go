package usecase

import (
	"context"
	"errors"
	"testing"

	"assignment-scanner/internal/config"
	"assignment-scanner/internal/domain/consultant"
	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/embedding"

	"github.com/google/uuid"
)

func localEmbedder(t *testing.T) *embedding.Service {
	t.Helper()
	return embedding.NewService(config.EmbeddingConfig{Backend: "local", Dimensions: 64}, nil, nil)
}

func goConsultant() consultant.ProfileIn {
	return consultant.ProfileIn{
		Name:            "Anna",
		Role:            "Backend Developer",
		Seniority:       "Senior",
		Skills:          []string{"Go", "PostgreSQL", "Kubernetes"},
		Languages:       []string{"Swedish", "English"},
		LocationCity:    "Stockholm",
		LocationCountry: "Sweden",
		OnsiteMode:      job.OnsiteModeHybrid,
		Active:          true,
	}
}

func goJob() job.PostingIn {
	return job.PostingIn{
		JobUID:          "verama_1",
		Source:          "verama",
		Title:           "Senior Backend Developer",
		Description:     "Go services on Kubernetes",
		Skills:          []string{"Go", "PostgreSQL"},
		Role:            "Backend Developer",
		Seniority:       "Senior",
		Languages:       []string{"Swedish", "English"},
		LocationCity:    "Stockholm",
		LocationCountry: "Sweden",
		OnsiteMode:      job.OnsiteModeHybrid,
		URL:             "https://example.com/1",
	}
}

func TestRunMatchingStoresTopMatches(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	consultants.add(goConsultant())

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	summary, err := uc.RunMatching(context.Background(), nil, nil, 0.5, 10)
	if err != nil {
		t.Fatalf("RunMatching failed: %v", err)
	}
	if summary.JobsScored != 1 || summary.JobsFailed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.MatchesStored != 1 {
		t.Fatalf("expected 1 stored match, got %d", summary.MatchesStored)
	}
	if len(matches.stored) != 1 {
		t.Fatalf("repo has %d matches", len(matches.stored))
	}
	m := matches.stored[0]
	if m.Score < 0.5 || m.Score > 1.0 {
		t.Fatalf("score out of range: %v", m.Score)
	}
	if m.Reason.Summary == "" {
		t.Fatal("reason summary must be populated")
	}
}

func TestRunMatchingFiltersByMinScore(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	consultants.add(goConsultant())

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	summary, err := uc.RunMatching(context.Background(), nil, nil, 1.01, 10)
	if err != nil {
		t.Fatalf("RunMatching failed: %v", err)
	}
	if summary.MatchesStored != 0 {
		t.Fatalf("no match should clear an impossible threshold, got %d", summary.MatchesStored)
	}
}

func TestRunMatchingCapsResultsPerJob(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	for _, name := range []string{"Anna", "Bertil", "Cecilia"} {
		c := goConsultant()
		c.Name = name
		consultants.add(c)
	}

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	summary, err := uc.RunMatching(context.Background(), nil, nil, 0.1, 2)
	if err != nil {
		t.Fatalf("RunMatching failed: %v", err)
	}
	if summary.MatchesStored != 2 {
		t.Fatalf("expected cap at 2 matches, got %d", summary.MatchesStored)
	}
}

func TestRunMatchingReusesStoredEmbeddings(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	consultants.add(goConsultant())

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.1, 10); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstJobStores := embeddings.jobStores
	firstConsultStores := embeddings.consultStores

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.1, 10); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if embeddings.jobStores != firstJobStores || embeddings.consultStores != firstConsultStores {
		t.Fatal("unchanged text must not trigger embedding recompute")
	}
}

func TestRunMatchingRecomputesOnTextChange(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	p := jobs.add(goJob())
	consultants.add(goConsultant())

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.1, 10); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	before := embeddings.jobStores

	updated := p.PostingIn
	updated.Description = "Completely different assignment text"
	if _, err := jobs.UpsertJob(context.Background(), updated); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.1, 10); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if embeddings.jobStores != before+1 {
		t.Fatalf("changed text must recompute the embedding, stores %d -> %d", before, embeddings.jobStores)
	}
}

func TestMatchesForJobUnknownID(t *testing.T) {
	uc := NewMatchingUsecase(newFakeJobRepo(), &fakeConsultantRepo{}, &fakeMatchRepo{}, newFakeEmbeddingRepo(), localEmbedder(t), 100, nil)
	if _, err := uc.MatchesForJob(context.Background(), uuid.New(), 10); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := uc.MatchesForJob(context.Background(), uuid.Nil, 10); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound for nil id, got %v", err)
	}
}

func TestRunMatchingIsolatesFailingJob(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	good := jobs.add(goJob())
	badIn := goJob()
	badIn.JobUID = "verama_2"
	bad := jobs.add(badIn)
	consultants.add(goConsultant())

	embeddings.jobErrFor = map[uuid.UUID]error{bad.ID: errors.New("embedding store down")}

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	summary, err := uc.RunMatching(context.Background(), nil, nil, 0.5, 10)
	if err != nil {
		t.Fatalf("RunMatching failed: %v", err)
	}
	if summary.JobsFailed != 1 {
		t.Fatalf("jobs failed = %d, want 1", summary.JobsFailed)
	}
	if summary.JobsScored != 1 {
		t.Fatalf("healthy job must still be scored, got %d", summary.JobsScored)
	}
	if len(matches.stored) != 1 || matches.stored[0].JobID != good.ID {
		t.Fatalf("stored matches = %+v", matches.stored)
	}
}

func TestRunMatchingReRunReplacesMatches(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	consultants.add(goConsultant())

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.5, 10); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := matches.stored[0]

	if _, err := uc.RunMatching(context.Background(), nil, nil, 0.5, 10); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(matches.stored) != 1 {
		t.Fatalf("re-run must replace the pair's match, repo has %d", len(matches.stored))
	}
	m := matches.stored[0]
	if m.JobID != first.JobID || m.ConsultantID != first.ConsultantID {
		t.Fatalf("match pair changed: %+v", m)
	}
	if m.Score != first.Score {
		t.Fatalf("identical inputs must score identically: %v vs %v", m.Score, first.Score)
	}
}

func TestRunMatchingSkipsUnwritableMatch(t *testing.T) {
	jobs := newFakeJobRepo()
	consultants := &fakeConsultantRepo{}
	matches := &fakeMatchRepo{}
	embeddings := newFakeEmbeddingRepo()

	jobs.add(goJob())
	broken := consultants.add(goConsultant())
	other := goConsultant()
	other.Name = "Bertil"
	consultants.add(other)

	matches.upsertErrFor = map[uuid.UUID]error{broken.ID: errors.New("write refused")}

	uc := NewMatchingUsecase(jobs, consultants, matches, embeddings, localEmbedder(t), 100, nil)

	summary, err := uc.RunMatching(context.Background(), nil, nil, 0.5, 10)
	if err != nil {
		t.Fatalf("RunMatching failed: %v", err)
	}
	if summary.JobsFailed != 0 {
		t.Fatalf("one bad write must not fail the job, summary = %+v", summary)
	}
	if summary.MatchesStored != 1 || len(matches.stored) != 1 {
		t.Fatalf("remaining candidate must still be stored, got %d", len(matches.stored))
	}
	if matches.stored[0].ConsultantID == broken.ID {
		t.Fatal("stored match must belong to the writable consultant")
	}
}
