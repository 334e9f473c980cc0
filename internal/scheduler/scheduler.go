package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/service"
	"github.com/sirupsen/logrus"
)

// Scheduler периодически запускает пайплайн по расписанию PIPELINE_SCHEDULE.
// Запуск пропускается, если предыдущий еще не завершился.
type Scheduler struct {
	cron    *cron.Cron
	service service.PipelineService
	logger  *logrus.Logger
	request models.RunRequest
}

// New создает планировщик. Выражение расписания - стандартный cron из пяти полей
// или дескриптор вида "@every 1h".
func New(svc service.PipelineService, cfg *config.Config, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: svc,
		logger:  logger,
		request: models.RunRequest{
			InputPath:  cfg.PipelineInput,
			OutputPath: cfg.PipelineOutput,
		},
	}

	if _, err := s.cron.AddFunc(cfg.PipelineSchedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_SCHEDULE %q: %w", cfg.PipelineSchedule, err)
	}
	return s, nil
}

// Start запускает планировщик в отдельной горутине
func (s *Scheduler) Start() {
	s.logger.WithFields(logrus.Fields{
		"input":  s.request.InputPath,
		"output": s.request.OutputPath,
	}).Info("Starting pipeline scheduler...")
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущего запуска либо отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Pipeline scheduler stopped.")
	case <-ctx.Done():
		s.logger.Warn("Pipeline scheduler stop timed out")
	}
}

// RunOnce выполняет один плановый запуск. Ошибка только логируется: запуск уже в архиве.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log := s.logger.WithField("component", "scheduler")
	log.Info("CronJob: pipeline run triggered")

	run, err := s.service.Run(ctx, s.request)
	if err != nil {
		log.WithError(err).Error("Scheduled pipeline run failed")
		return
	}
	log.WithField("run_id", run.ID).Info("Scheduled pipeline run completed")
}
