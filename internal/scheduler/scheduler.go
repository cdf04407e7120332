// Package scheduler wires the cron jobs that drive scanning, optimization
// and reporting. All specs are evaluated in the configured timezone.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"assignment-scanner/internal/config"
	"assignment-scanner/internal/usecase"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps robfig/cron. Overlapping runs of the same job are skipped
// rather than queued: a slow scan must not pile up behind itself.
type Scheduler struct {
	cron      *cron.Cron
	scan      usecase.ScanUsecase
	optimizer usecase.OptimizerUsecase
	reports   usecase.ReportUsecase
	log       *zap.Logger
	cfg       config.ScannerConfig

	mu      sync.Mutex
	entries map[string]cron.EntryID
	lastRun map[string]time.Time
}

// JobStatus is one scheduled job's state for the status endpoint.
type JobStatus struct {
	Name    string     `json:"name"`
	Spec    string     `json:"spec"`
	NextRun time.Time  `json:"next_run"`
	LastRun *time.Time `json:"last_run,omitempty"`
}

func New(
	cfg config.ScannerConfig,
	scan usecase.ScanUsecase,
	optimizer usecase.OptimizerUsecase,
	reports usecase.ReportUsecase,
	log *zap.Logger,
) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "Europe/Stockholm"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	cronLog := &zapCronLogger{log: log.Named("cron")}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)

	return &Scheduler{
		cron:      c,
		scan:      scan,
		optimizer: optimizer,
		reports:   reports,
		log:       log,
		cfg:       cfg,
		entries:   map[string]cron.EntryID{},
		lastRun:   map[string]time.Time{},
	}, nil
}

// Start registers all jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"daily_scan", s.cfg.DailyScanSpec, s.runScan},
		{"optimizer", s.cfg.OptimizerSpec, s.runOptimizer},
		{"weekly_report", s.cfg.WeeklyReportSpec, s.runWeeklyReport},
		{"monday_brief", s.cfg.MondayBriefSpec, s.runMondayBrief},
	}

	for _, j := range jobs {
		j := j
		if j.spec == "" {
			continue
		}
		id, err := s.cron.AddFunc(j.spec, func() {
			s.markRun(j.name)
			j.run(ctx)
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
		s.mu.Lock()
		s.entries[j.name] = id
		s.mu.Unlock()
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("timezone", s.cfg.Timezone),
		zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop shuts the cron loop down and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

// TriggerScanNow runs a scan outside the schedule. With a config ID it runs
// just that configuration; without one it runs the full cycle. The run is
// synchronous so the caller gets the outcome.
func (s *Scheduler) TriggerScanNow(ctx context.Context, configID *uuid.UUID) ([]usecase.CycleResult, error) {
	s.markRun("manual_scan")
	if configID != nil && *configID != uuid.Nil {
		res, err := s.scan.RunConfig(ctx, *configID)
		if err != nil {
			return nil, err
		}
		return []usecase.CycleResult{res}, nil
	}
	return s.scan.RunCycle(ctx)
}

// Status lists every scheduled job with its next and last run time.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs := map[string]string{
		"daily_scan":    s.cfg.DailyScanSpec,
		"optimizer":     s.cfg.OptimizerSpec,
		"weekly_report": s.cfg.WeeklyReportSpec,
		"monday_brief":  s.cfg.MondayBriefSpec,
	}

	out := make([]JobStatus, 0, len(s.entries))
	for _, name := range []string{"daily_scan", "optimizer", "weekly_report", "monday_brief"} {
		id, ok := s.entries[name]
		if !ok {
			continue
		}
		st := JobStatus{Name: name, Spec: specs[name], NextRun: s.cron.Entry(id).Next}
		if last, ok := s.lastRun[name]; ok {
			lastCopy := last
			st.LastRun = &lastCopy
		}
		out = append(out, st)
	}
	return out
}

func (s *Scheduler) markRun(name string) {
	s.mu.Lock()
	s.lastRun[name] = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Scheduler) runScan(ctx context.Context) {
	results, err := s.scan.RunCycle(ctx)
	if err != nil {
		s.log.Error("scheduled scan failed", zap.Error(err))
		return
	}
	var jobs, matches int
	for _, r := range results {
		jobs += r.JobsFound
		matches += r.MatchesGenerated
	}
	s.log.Info("scheduled scan finished",
		zap.Int("configs", len(results)),
		zap.Int("jobs_found", jobs),
		zap.Int("matches_generated", matches))
}

func (s *Scheduler) runOptimizer(ctx context.Context) {
	summary, err := s.optimizer.Optimize(ctx)
	if err != nil {
		s.log.Error("scheduled optimization failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled optimization finished",
		zap.Int("configs_scored", summary.ConfigsScored),
		zap.Int("parameters_learned", summary.ParametersLearned))
}

func (s *Scheduler) runWeeklyReport(ctx context.Context) {
	if _, err := s.reports.WeeklyReport(ctx); err != nil {
		s.log.Error("weekly report failed", zap.Error(err))
	}
}

func (s *Scheduler) runMondayBrief(ctx context.Context) {
	if _, err := s.reports.MondayBrief(ctx); err != nil {
		s.log.Error("monday brief failed", zap.Error(err))
	}
}

// zapCronLogger adapts zap to cron's logger interface.
type zapCronLogger struct {
	log *zap.Logger
}

func (l *zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l *zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
