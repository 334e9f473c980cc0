package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/violation_pipeline/internal/models"
)

const (
	webhookQueueKey = "pipeline_run_events"
)

// RunEvent - событие о завершении запуска пайплайна
type RunEvent struct {
	RunID             uuid.UUID `json:"run_id"`
	Status            string    `json:"status"`
	InputPath         string    `json:"input_path"`
	OutputPath        string    `json:"output_path"`
	TotalCount        int       `json:"total_count"`
	GeoPopulatedCount int       `json:"geo_populated_count"`
	Error             string    `json:"error,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewRunEvent собирает событие из результата запуска
func NewRunEvent(run *models.Run, at time.Time) RunEvent {
	event := RunEvent{
		RunID:      run.ID,
		Status:     run.Status,
		InputPath:  run.InputPath,
		OutputPath: run.OutputPath,
		Error:      run.Error,
		Timestamp:  at,
	}
	if run.Report != nil {
		event.TotalCount = run.Report.TotalCount
		event.GeoPopulatedCount = run.Report.GeoPopulatedCount
	}
	return event
}

// WebhookPublisher - интерфейс для публикации событий о запусках
type WebhookPublisher interface {
	Publish(ctx context.Context, event RunEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая очередь в Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в левую часть списка; воркер забирает справа
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish run event to Redis: %w", err)
	}
	return nil
}
