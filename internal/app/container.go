package app

import (
	"context"
	"time"

	"assignment-scanner/internal/config"
	"assignment-scanner/internal/database"
	dbpostgres "assignment-scanner/internal/database/postgres"
	"assignment-scanner/internal/embedding"
	"assignment-scanner/internal/infrastructure/cache"
	"assignment-scanner/internal/logger"
	"assignment-scanner/internal/repository"
	"assignment-scanner/internal/scheduler"
	"assignment-scanner/internal/scraper"
	"assignment-scanner/internal/usecase"

	"go.uber.org/zap"
)

// Container holds every long-lived dependency of the scanner. Everything is
// wired once here; nothing else constructs repositories or usecases.
type Container struct {
	Config config.Config
	Log    *zap.Logger
	DB     database.DB
	Redis  *cache.Redis

	Jobs        repository.JobRepository
	Consultants repository.ConsultantRepository
	Matches     repository.MatchRepository
	Embeddings  repository.EmbeddingRepository
	Configs     repository.ScanningConfigRepository
	Performance repository.PerformanceRepository

	Embedder  *embedding.Service
	Matching  usecase.MatchingUsecase
	Scan      usecase.ScanUsecase
	Optimizer usecase.OptimizerUsecase
	Reports   usecase.ReportUsecase

	Scheduler *scheduler.Scheduler
}

func NewContainer(cfg config.Config) (*Container, error) {
	log, err := logger.New(cfg.App.LogJSON, cfg.App.Debug)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redis := cache.NewRedis(cfg.Redis, log)

	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  redis,
	}

	c.Jobs = repository.NewPostgresJobRepository(db)
	c.Consultants = repository.NewPostgresConsultantRepository(db)
	c.Matches = repository.NewPostgresMatchRepository(db)
	c.Embeddings = repository.NewPostgresEmbeddingRepository(db)
	c.Configs = repository.NewPostgresScanningConfigRepository(db)
	c.Performance = repository.NewPostgresPerformanceRepository(db)

	c.Embedder = embedding.NewService(cfg.Embedding, redis, log)

	c.Matching = usecase.NewMatchingUsecase(
		c.Jobs, c.Consultants, c.Matches, c.Embeddings, c.Embedder,
		cfg.Scanner.RecentJobsLimit, log)
	c.Scan = usecase.NewScanUsecase(
		c.Configs, c.Jobs, c.Performance, c.Matching,
		scraper.DefaultRegistry(),
		cfg.Scanner.MinScore, cfg.Scanner.MaxResultsPerJob, log)
	c.Optimizer = usecase.NewOptimizerUsecase(c.Configs, c.Performance, log)
	c.Reports = usecase.NewReportUsecase(
		c.Jobs, c.Matches, usecase.NewLogNotifier(log), 0.8, log)

	c.Scheduler, err = scheduler.New(cfg.Scanner, c.Scan, c.Optimizer, c.Reports, log)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
