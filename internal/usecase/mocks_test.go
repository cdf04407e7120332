package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"assignment-scanner/internal/domain/consultant"
	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/match"
	"assignment-scanner/internal/domain/scanning"
	"assignment-scanner/internal/repository"

	"github.com/google/uuid"
)

type fakeJobRepo struct {
	mu    sync.Mutex
	jobs  map[uuid.UUID]job.Posting
	order []uuid.UUID

	upsertErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]job.Posting{}}
}

func (r *fakeJobRepo) add(in job.PostingIn) job.Posting {
	p := job.Posting{PostingIn: in, ID: uuid.New(), ScrapedAt: time.Now().UTC()}
	r.jobs[p.ID] = p
	r.order = append(r.order, p.ID)
	return p
}

func (r *fakeJobRepo) GetJob(_ context.Context, id uuid.UUID) (*job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.jobs[id]; ok {
		return &p, nil
	}
	return nil, nil
}

// GetRecentJobs serves from the jobs map so upserted text changes are
// visible, the way the real query would see them.
func (r *fakeJobRepo) GetRecentJobs(_ context.Context, limit int) ([]job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]job.Posting, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpsertJob(_ context.Context, in job.PostingIn) (job.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return job.Posting{}, r.upsertErr
	}
	for id, existing := range r.jobs {
		if existing.JobUID == in.JobUID {
			existing.PostingIn = in
			r.jobs[id] = existing
			return existing, nil
		}
	}
	return r.add(in), nil
}

func (r *fakeJobRepo) CountJobsSince(context.Context, time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs), nil
}

func (r *fakeJobRepo) CountJobsBySourceSince(context.Context, time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, p := range r.jobs {
		out[p.Source]++
	}
	return out, nil
}

func (r *fakeJobRepo) TopSkillsSince(_ context.Context, _ time.Time, limit int) ([]repository.SkillCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, p := range r.jobs {
		for _, s := range p.Skills {
			counts[s]++
		}
	}
	out := make([]repository.SkillCount, 0, len(counts))
	for skill, n := range counts {
		out = append(out, repository.SkillCount{Skill: skill, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeConsultantRepo struct {
	profiles []consultant.Profile
}

func (r *fakeConsultantRepo) add(in consultant.ProfileIn) consultant.Profile {
	p := consultant.Profile{ProfileIn: in, ID: uuid.New()}
	r.profiles = append(r.profiles, p)
	return p
}

func (r *fakeConsultantRepo) GetConsultant(_ context.Context, id uuid.UUID) (*consultant.Profile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeConsultantRepo) GetConsultants(_ context.Context, activeOnly bool, limit int) ([]consultant.Profile, error) {
	out := make([]consultant.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeConsultantRepo) UpsertConsultant(_ context.Context, in consultant.ProfileIn) (consultant.Profile, error) {
	for i, p := range r.profiles {
		if p.Name == in.Name {
			r.profiles[i].ProfileIn = in
			return r.profiles[i], nil
		}
	}
	return r.add(in), nil
}

func dummyReason() match.Reason {
	return match.Reason{Summary: "Match score: 85%."}
}

type fakeMatchRepo struct {
	mu     sync.Mutex
	stored []match.Match

	upsertErrFor map[uuid.UUID]error
}

func (r *fakeMatchRepo) UpsertMatch(_ context.Context, jobID, consultantID uuid.UUID, score float64, reason match.Reason) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.upsertErrFor[consultantID]; err != nil {
		return match.Match{}, err
	}
	for i, m := range r.stored {
		if m.JobID == jobID && m.ConsultantID == consultantID {
			r.stored[i].Score = score
			r.stored[i].Reason = reason
			return r.stored[i], nil
		}
	}
	m := match.Match{ID: uuid.New(), JobID: jobID, ConsultantID: consultantID, Score: score, Reason: reason, CreatedAt: time.Now().UTC()}
	r.stored = append(r.stored, m)
	return m, nil
}

func (r *fakeMatchRepo) GetMatchesForJob(_ context.Context, jobID uuid.UUID, limit int) ([]match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]match.Match, 0)
	for _, m := range r.stored {
		if m.JobID == jobID {
			out = append(out, m)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) CountMatchesSince(context.Context, time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stored), nil
}

func (r *fakeMatchRepo) CountHighQualityMatchesSince(_ context.Context, _ time.Time, minScore float64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.stored {
		if m.Score >= minScore {
			n++
		}
	}
	return n, nil
}

type storedVec struct {
	vec  []float64
	hash string
}

type fakeEmbeddingRepo struct {
	jobVecs        map[uuid.UUID]storedVec
	consultantVecs map[uuid.UUID]storedVec
	jobStores      int
	consultStores  int

	jobErrFor map[uuid.UUID]error
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{
		jobVecs:        map[uuid.UUID]storedVec{},
		consultantVecs: map[uuid.UUID]storedVec{},
	}
}

func (r *fakeEmbeddingRepo) GetJobEmbedding(_ context.Context, id uuid.UUID) ([]float64, string, error) {
	if err := r.jobErrFor[id]; err != nil {
		return nil, "", err
	}
	if s, ok := r.jobVecs[id]; ok {
		return s.vec, s.hash, nil
	}
	return nil, "", nil
}

func (r *fakeEmbeddingRepo) StoreJobEmbedding(_ context.Context, id uuid.UUID, vec []float64, hash string) error {
	r.jobVecs[id] = storedVec{vec: vec, hash: hash}
	r.jobStores++
	return nil
}

func (r *fakeEmbeddingRepo) GetConsultantEmbedding(_ context.Context, id uuid.UUID) ([]float64, string, error) {
	if s, ok := r.consultantVecs[id]; ok {
		return s.vec, s.hash, nil
	}
	return nil, "", nil
}

func (r *fakeEmbeddingRepo) StoreConsultantEmbedding(_ context.Context, id uuid.UUID, vec []float64, hash string) error {
	r.consultantVecs[id] = storedVec{vec: vec, hash: hash}
	r.consultStores++
	return nil
}

type sourcePerfUpdate struct {
	configID    uuid.UUID
	sourceName  string
	successRate float64
	avgMatches  float64
}

type fakeConfigRepo struct {
	configs   []scanning.Config
	overrides map[uuid.UUID][]scanning.SourceOverride

	perfUpdates []sourcePerfUpdate
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{overrides: map[uuid.UUID][]scanning.SourceOverride{}}
}

func (r *fakeConfigRepo) GetActiveConfigs(context.Context) ([]scanning.Config, error) {
	out := make([]scanning.Config, 0, len(r.configs))
	for _, c := range r.configs {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConfigRepo) GetAllConfigs(context.Context) ([]scanning.Config, error) {
	return r.configs, nil
}

func (r *fakeConfigRepo) GetConfig(_ context.Context, id uuid.UUID) (*scanning.Config, error) {
	for _, c := range r.configs {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) GetSourceOverrides(_ context.Context, configID uuid.UUID) ([]scanning.SourceOverride, error) {
	return r.overrides[configID], nil
}

func (r *fakeConfigRepo) UpdateSourcePerformance(_ context.Context, configID uuid.UUID, sourceName string, successRate, avgMatches float64) error {
	r.perfUpdates = append(r.perfUpdates, sourcePerfUpdate{
		configID:    configID,
		sourceName:  sourceName,
		successRate: successRate,
		avgMatches:  avgMatches,
	})
	return nil
}

type learnedKey struct {
	name  string
	value string
}

type fakePerformanceRepo struct {
	entries []scanning.PerformanceLogEntry
	scores  map[uuid.UUID]float64
	learned map[learnedKey]scanning.LearnedParameter

	historyErr error
}

func newFakePerformanceRepo() *fakePerformanceRepo {
	return &fakePerformanceRepo{
		scores:  map[uuid.UUID]float64{},
		learned: map[learnedKey]scanning.LearnedParameter{},
	}
}

func (r *fakePerformanceRepo) LogConfigPerformance(_ context.Context, entry scanning.PerformanceLogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakePerformanceRepo) GetPerformanceHistory(_ context.Context, configID uuid.UUID, window time.Duration) ([]scanning.PerformanceLogEntry, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	cutoff := time.Now().UTC().Add(-window)
	out := make([]scanning.PerformanceLogEntry, 0)
	for _, e := range r.entries {
		if e.ConfigID == configID && e.ScanDate.After(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakePerformanceRepo) UpdateConfigPerformanceScore(_ context.Context, configID uuid.UUID, score float64) error {
	r.scores[configID] = score
	return nil
}

func (r *fakePerformanceRepo) UpsertLearnedParameter(_ context.Context, name, value string, effectiveness float64, configID uuid.UUID) error {
	key := learnedKey{name: name, value: value}
	if existing, ok := r.learned[key]; ok {
		if effectiveness > existing.EffectivenessScore {
			existing.EffectivenessScore = effectiveness
		}
		existing.UseCount++
		r.learned[key] = existing
		return nil
	}
	id := configID
	r.learned[key] = scanning.LearnedParameter{
		ID:                  uuid.New(),
		ParameterName:       name,
		ParameterValue:      value,
		EffectivenessScore:  effectiveness,
		UseCount:            1,
		LearnedFromConfigID: &id,
		UpdatedAt:           time.Now().UTC(),
	}
	return nil
}

func (r *fakePerformanceRepo) TopLearnedParameters(_ context.Context, limit int) ([]scanning.LearnedParameter, error) {
	out := make([]scanning.LearnedParameter, 0, len(r.learned))
	for _, lp := range r.learned {
		out = append(out, lp)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
