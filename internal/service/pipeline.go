package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/engine"
	"github.com/shenikar/violation_pipeline/internal/export"
	"github.com/shenikar/violation_pipeline/internal/ingest"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/pipeline"
	"github.com/shenikar/violation_pipeline/internal/report"
	"github.com/shenikar/violation_pipeline/internal/webhook"
	"github.com/sirupsen/logrus"
)

// ErrRunNotFound - запуск с таким ID отсутствует в архиве
var ErrRunNotFound = errors.New("run not found")

// RunRepository определяет контракт архива запусков
type RunRepository interface {
	Save(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, page, pageSize int) ([]*models.Run, error)
	GetRunFromCache(ctx context.Context, id uuid.UUID) (*models.Run, error)
	SetRunCache(ctx context.Context, run *models.Run) error
}

// PipelineService определяет контракт запуска пайплайна и чтения архива запусков
type PipelineService interface {
	Run(ctx context.Context, req models.RunRequest) (*models.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, page, pageSize int) ([]*models.Run, error)
}

type pipelineService struct {
	repo      RunRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
	now       func() time.Time
}

// NewPipelineService создает сервис. publisher может быть nil - тогда события не публикуются.
func NewPipelineService(repo RunRepository, logger *logrus.Logger, cfg *config.Config, publisher webhook.WebhookPublisher) PipelineService {
	return &pipelineService{
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run выполняет загрузку, очистку, обогащение, сводку и выгрузку.
// Фатальная ошибка входных данных прерывает запуск; он архивируется со статусом failed.
func (s *pipelineService) Run(ctx context.Context, req models.RunRequest) (*models.Run, error) {
	run := &models.Run{
		ID:         uuid.New(),
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		StartedAt:  s.now().UTC(),
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "pipeline",
		"method":  "Run",
		"run_id":  run.ID,
		"input":   req.InputPath,
		"output":  req.OutputPath,
	})
	log.Info("Starting pipeline run")

	runErr := s.execute(run)
	run.FinishedAt = s.now().UTC()
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
		log.WithError(runErr).WithField("fatal_input", ingest.IsFatal(runErr)).Error("Pipeline run failed")
	} else {
		run.Status = models.RunStatusSucceeded
		log.WithFields(logrus.Fields{
			"total_count":          run.Report.TotalCount,
			"geo_populated_count":  run.Report.GeoPopulatedCount,
			"dropped_missing_id":   run.CleanStats.DroppedMissingID,
			"dropped_disallowed":   run.CleanStats.DroppedDisallowedType,
			"timestamps_nulled":    run.CleanStats.TimestampsNulled,
			"malformed_coordinate": run.EnrichStats.MalformedCoordinates,
		}).Info("Pipeline run completed")
	}

	// Архив и события не влияют на результат запуска
	if err := s.repo.Save(ctx, run); err != nil {
		log.WithError(err).Error("Failed to archive run in repository")
	}
	s.publish(ctx, run, log)

	if runErr != nil {
		return run, fmt.Errorf("service: pipeline run failed: %w", runErr)
	}
	return run, nil
}

func (s *pipelineService) execute(run *models.Run) error {
	sess, err := engine.Open(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("could not open engine session: %w", err)
	}
	defer sess.Close()

	records, err := ingest.Load(sess, run.InputPath)
	if err != nil {
		return err
	}

	cleaned, cleanStats := pipeline.NewCleaner(sess).Clean(records)
	run.CleanStats = cleanStats

	enriched, enrichStats := pipeline.Enrich(cleaned)
	run.EnrichStats = enrichStats

	run.Report = report.Summarize(enriched)

	return export.WriteParquet(sess, enriched, run.OutputPath)
}

func (s *pipelineService) publish(ctx context.Context, run *models.Run, log *logrus.Entry) {
	if s.publisher == nil {
		return
	}
	event := webhook.NewRunEvent(run, s.now().UTC())
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish run event")
	}
}

// GetRun получает запуск по ID: сначала из кеша, затем из архива
func (s *pipelineService) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "pipeline",
		"method":  "GetRun",
		"run_id":  id,
	})
	log.Info("Fetching run by ID")

	cached, err := s.repo.GetRunFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read run from cache")
	}
	if cached != nil {
		log.Debug("Run served from cache")
		return cached, nil
	}

	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get run from repository")
		return nil, fmt.Errorf("service: could not get run: %w", err)
	}

	if err := s.repo.SetRunCache(ctx, run); err != nil {
		log.WithError(err).Warn("Failed to cache run")
	}

	log.Info("Run fetched successfully")
	return run, nil
}

// ListRuns возвращает список запусков с пагинацией
func (s *pipelineService) ListRuns(ctx context.Context, page, pageSize int) ([]*models.Run, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "pipeline",
		"method":    "ListRuns",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing runs")

	runs, err := s.repo.ListRuns(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list runs from repository")
		return nil, fmt.Errorf("service: could not list runs: %w", err)
	}

	log.WithField("count", len(runs)).Info("Runs listed successfully")
	return runs, nil
}
