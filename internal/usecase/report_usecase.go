package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"assignment-scanner/internal/repository"

	"go.uber.org/zap"
)

// Notifier delivers a finished report somewhere a human reads it. The
// default implementation just logs; mail or chat delivery slots in behind
// the same interface.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type logNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(_ context.Context, subject, body string) error {
	n.log.Info("report ready", zap.String("subject", subject), zap.String("body", body))
	return nil
}

// ReportUsecase builds the weekly summary and the Monday morning brief.
type ReportUsecase interface {
	WeeklyReport(ctx context.Context) (string, error)
	MondayBrief(ctx context.Context) (string, error)
}

type Report struct {
	jobs     repository.JobRepository
	matches  repository.MatchRepository
	notifier Notifier
	log      *zap.Logger

	highQualityScore float64
	now              func() time.Time
}

func NewReportUsecase(
	jobs repository.JobRepository,
	matches repository.MatchRepository,
	notifier Notifier,
	highQualityScore float64,
	log *zap.Logger,
) *Report {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	if highQualityScore <= 0 {
		highQualityScore = 0.8
	}
	return &Report{
		jobs:             jobs,
		matches:          matches,
		notifier:         notifier,
		log:              log,
		highQualityScore: highQualityScore,
		now:              time.Now,
	}
}

// WeeklyReport summarizes the trailing seven days and hands the text to the
// notifier. The rendered report is also returned for the HTTP layer.
func (u *Report) WeeklyReport(ctx context.Context) (string, error) {
	since := u.now().UTC().Add(-7 * 24 * time.Hour)
	body, err := u.buildSummary(ctx, since, "Weekly assignment report")
	if err != nil {
		return "", err
	}
	if err := u.notifier.Notify(ctx, "Weekly assignment report", body); err != nil {
		u.log.Warn("weekly report delivery failed", zap.Error(err))
	}
	return body, nil
}

// MondayBrief covers the weekend so nothing posted on Saturday or Sunday
// waits until the next scan review.
func (u *Report) MondayBrief(ctx context.Context) (string, error) {
	since := u.now().UTC().Add(-3 * 24 * time.Hour)
	body, err := u.buildSummary(ctx, since, "Monday brief")
	if err != nil {
		return "", err
	}
	if err := u.notifier.Notify(ctx, "Monday brief", body); err != nil {
		u.log.Warn("monday brief delivery failed", zap.Error(err))
	}
	return body, nil
}

func (u *Report) buildSummary(ctx context.Context, since time.Time, title string) (string, error) {
	jobsFound, err := u.jobs.CountJobsSince(ctx, since)
	if err != nil {
		return "", err
	}
	bySource, err := u.jobs.CountJobsBySourceSince(ctx, since)
	if err != nil {
		return "", err
	}
	matchCount, err := u.matches.CountMatchesSince(ctx, since)
	if err != nil {
		return "", err
	}
	highQuality, err := u.matches.CountHighQualityMatchesSince(ctx, since, u.highQualityScore)
	if err != nil {
		return "", err
	}
	topSkills, err := u.jobs.TopSkillsSince(ctx, since, 10)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (since %s)\n", title, since.Format("2006-01-02"))
	fmt.Fprintf(&b, "New assignments: %d\n", jobsFound)

	sources := make([]string, 0, len(bySource))
	for name := range bySource {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	for _, name := range sources {
		fmt.Fprintf(&b, "  %s: %d\n", name, bySource[name])
	}

	fmt.Fprintf(&b, "Matches generated: %d\n", matchCount)
	fmt.Fprintf(&b, "High-quality matches (score >= %.2f): %d\n", u.highQualityScore, highQuality)

	if len(topSkills) > 0 {
		b.WriteString("Most requested skills:\n")
		for _, sc := range topSkills {
			fmt.Fprintf(&b, "  %s: %d\n", sc.Skill, sc.Count)
		}
	}
	return b.String(), nil
}
