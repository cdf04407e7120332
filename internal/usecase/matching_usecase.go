package usecase

import (
	"context"
	"errors"
	"sort"

	"assignment-scanner/internal/domain/consultant"
	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/match"
	"assignment-scanner/internal/domain/matching"
	"assignment-scanner/internal/embedding"
	"assignment-scanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrJobNotFound        = errors.New("job not found")
	ErrConsultantNotFound = errors.New("consultant not found")
	ErrInternal           = errors.New("internal error")
)

// MatchingUsecase scores jobs against consultant profiles and persists the
// best matches per job.
type MatchingUsecase interface {
	RunMatching(ctx context.Context, jobIDs, consultantIDs []uuid.UUID, minScore float64, maxResults int) (MatchingSummary, error)
	MatchesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]match.Match, error)
}

// MatchingSummary reports one matching run.
type MatchingSummary struct {
	JobsScored     int
	JobsFailed     int
	MatchesStored  int
	ConsultantPool int
}

type Matching struct {
	jobs        repository.JobRepository
	consultants repository.ConsultantRepository
	matches     repository.MatchRepository
	embeddings  repository.EmbeddingRepository
	embedder    *embedding.Service
	log         *zap.Logger

	recentJobLimit int
}

func NewMatchingUsecase(
	jobs repository.JobRepository,
	consultants repository.ConsultantRepository,
	matches repository.MatchRepository,
	embeddings repository.EmbeddingRepository,
	embedder *embedding.Service,
	recentJobLimit int,
	log *zap.Logger,
) *Matching {
	if log == nil {
		log = zap.NewNop()
	}
	if recentJobLimit <= 0 {
		recentJobLimit = 100
	}
	return &Matching{
		jobs:           jobs,
		consultants:    consultants,
		matches:        matches,
		embeddings:     embeddings,
		embedder:       embedder,
		log:            log,
		recentJobLimit: recentJobLimit,
	}
}

// RunMatching scores every selected job against every selected consultant.
// Empty jobIDs means the most recent jobs; empty consultantIDs means all
// active consultants. A failure on one job skips that job only.
func (u *Matching) RunMatching(ctx context.Context, jobIDs, consultantIDs []uuid.UUID, minScore float64, maxResults int) (MatchingSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	jobs, err := u.resolveJobs(ctx, jobIDs)
	if err != nil {
		return MatchingSummary{}, err
	}
	profiles, err := u.resolveConsultants(ctx, consultantIDs)
	if err != nil {
		return MatchingSummary{}, err
	}

	summary := MatchingSummary{ConsultantPool: len(profiles)}
	if len(jobs) == 0 || len(profiles) == 0 {
		return summary, nil
	}

	sides := make([]matching.ConsultantSide, len(profiles))
	for i, p := range profiles {
		vec, err := u.consultantVector(ctx, p)
		if err != nil {
			u.log.Warn("consultant embedding failed",
				zap.String("consultant", p.Name), zap.Error(err))
		}
		sides[i] = consultantSide(p, vec)
	}

	for _, j := range jobs {
		stored, err := u.matchOne(ctx, j, profiles, sides, minScore, maxResults)
		if err != nil {
			summary.JobsFailed++
			u.log.Error("matching failed for job",
				zap.String("job_uid", j.JobUID), zap.Error(err))
			continue
		}
		summary.JobsScored++
		summary.MatchesStored += stored
	}

	u.log.Info("matching run finished",
		zap.Int("jobs_scored", summary.JobsScored),
		zap.Int("jobs_failed", summary.JobsFailed),
		zap.Int("matches_stored", summary.MatchesStored))
	return summary, nil
}

func (u *Matching) MatchesForJob(ctx context.Context, jobID uuid.UUID, limit int) ([]match.Match, error) {
	if jobID == uuid.Nil {
		return nil, ErrJobNotFound
	}
	if limit <= 0 {
		limit = 10
	}
	p, err := u.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrJobNotFound
	}
	return u.matches.GetMatchesForJob(ctx, jobID, limit)
}

func (u *Matching) matchOne(ctx context.Context, j job.Posting, profiles []consultant.Profile, sides []matching.ConsultantSide, minScore float64, maxResults int) (int, error) {
	vec, err := u.jobVector(ctx, j)
	if err != nil {
		return 0, err
	}
	jobSide := matching.JobSide{
		Skills:          j.Skills,
		Role:            j.Role,
		Seniority:       j.Seniority,
		Languages:       j.Languages,
		LocationCity:    j.LocationCity,
		LocationCountry: j.LocationCountry,
		OnsiteMode:      string(j.OnsiteMode),
		Embedding:       vec,
	}

	type scored struct {
		consultantID uuid.UUID
		result       matching.Result
	}
	candidates := make([]scored, 0, len(sides))
	for i, side := range sides {
		res := matching.Score(jobSide, side)
		if res.Scores.Total < minScore {
			continue
		}
		candidates = append(candidates, scored{consultantID: profiles[i].ID, result: res})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].result.Scores.Total > candidates[b].result.Scores.Total
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	stored := 0
	for _, c := range candidates {
		reason := toReason(c.result.Explanation)
		if _, err := u.matches.UpsertMatch(ctx, j.ID, c.consultantID, c.result.Scores.Total, reason); err != nil {
			// One unwritable match must not drop the rest of the batch.
			u.log.Warn("match upsert failed",
				zap.String("job_uid", j.JobUID),
				zap.String("consultant_id", c.consultantID.String()),
				zap.Error(err))
			continue
		}
		stored++
	}
	return stored, nil
}

// jobVector returns the job's stored embedding, recomputing it when the
// prepared text changed since the vector was stored.
func (u *Matching) jobVector(ctx context.Context, j job.Posting) ([]float64, error) {
	text := embedding.PrepareJobText(j.PostingIn)
	if text == "" {
		return nil, nil
	}
	hash := embedding.TextHash(text)

	vec, storedHash, err := u.embeddings.GetJobEmbedding(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 && storedHash == hash {
		return vec, nil
	}

	vec, err = u.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := u.embeddings.StoreJobEmbedding(ctx, j.ID, vec, hash); err != nil {
		return nil, err
	}
	return vec, nil
}

func (u *Matching) consultantVector(ctx context.Context, p consultant.Profile) ([]float64, error) {
	text := embedding.PrepareConsultantText(p.ProfileIn)
	if text == "" {
		return nil, nil
	}
	hash := embedding.TextHash(text)

	vec, storedHash, err := u.embeddings.GetConsultantEmbedding(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 && storedHash == hash {
		return vec, nil
	}

	vec, err = u.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := u.embeddings.StoreConsultantEmbedding(ctx, p.ID, vec, hash); err != nil {
		return nil, err
	}
	return vec, nil
}

func (u *Matching) resolveJobs(ctx context.Context, ids []uuid.UUID) ([]job.Posting, error) {
	if len(ids) == 0 {
		return u.jobs.GetRecentJobs(ctx, u.recentJobLimit)
	}
	out := make([]job.Posting, 0, len(ids))
	for _, id := range ids {
		p, err := u.jobs.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrJobNotFound
		}
		out = append(out, *p)
	}
	return out, nil
}

func (u *Matching) resolveConsultants(ctx context.Context, ids []uuid.UUID) ([]consultant.Profile, error) {
	if len(ids) == 0 {
		return u.consultants.GetConsultants(ctx, true, 0)
	}
	out := make([]consultant.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := u.consultants.GetConsultant(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrConsultantNotFound
		}
		out = append(out, *p)
	}
	return out, nil
}

func consultantSide(p consultant.Profile, vec []float64) matching.ConsultantSide {
	return matching.ConsultantSide{
		Skills:           p.Skills,
		Role:             p.Role,
		Seniority:        p.Seniority,
		Languages:        p.Languages,
		LocationCity:     p.LocationCity,
		LocationCountry:  p.LocationCountry,
		OnsiteMode:       string(p.OnsiteMode),
		AvailabilityFrom: p.AvailabilityFrom,
		Embedding:        vec,
	}
}

func toReason(e matching.Explanation) match.Reason {
	return match.Reason{
		Summary:           e.Summary,
		SkillsMatched:     e.SkillsMatched,
		SkillsMissing:     e.SkillsMissing,
		LanguageMatch:     e.LanguageMatch,
		LocationMatch:     e.LocationMatch,
		AvailabilityMatch: e.AvailabilityMatch,
		Strengths:         e.Strengths,
		Concerns:          e.Concerns,
	}
}
