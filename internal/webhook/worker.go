package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/sirupsen/logrus"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookWorker - забирает события из очереди и доставляет их на WEBHOOK_URL
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	sleep       func(ctx context.Context, d time.Duration)
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		sleep: sleepContext,
	}
}

// Start запускает горутину обработки очереди; она завершается с отменой ctx
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.Info("Starting webhook worker...")
	go func() {
		for {
			if ctx.Err() != nil {
				w.logger.Info("Stopping webhook worker.")
				return
			}

			// 0 - бесконечное ожидание
			result, err := w.redisClient.BRPop(ctx, 0, webhookQueueKey).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop run event from Redis")
				w.sleep(ctx, w.cfg.WebhookTimeout)
				continue
			}

			// result[0] - ключ, result[1] - значение
			if err := w.Deliver(ctx, []byte(result[1])); err != nil {
				w.logger.WithError(err).Error("Run event was not delivered")
			}
		}
	}()
}

// Deliver отправляет одно событие с повторами и экспоненциальной задержкой
func (w *WebhookWorker) Deliver(ctx context.Context, payload []byte) error {
	var event RunEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal run event: %w", err)
	}

	log := w.logger.WithField("event_run_id", event.RunID).WithField("event_status", event.Status)
	log.Debug("Processing run event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return nil
	}

	maxRetries := w.cfg.WebhookMaxRetries
	delay := w.cfg.WebhookBaseDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		status, err := w.post(ctx, payload)
		if err == nil && status >= 200 && status < 300 {
			log.Info("Webhook delivered successfully.")
			return nil
		}
		if err != nil {
			log.WithError(err).Warnf("Failed to send webhook. Attempt %d of %d", attempt, maxRetries)
		} else {
			log.Warnf("Webhook delivery failed with status code %d. Attempt %d of %d", status, attempt, maxRetries)
		}
		if attempt < maxRetries {
			w.sleep(ctx, delay)
			delay *= 2
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed to deliver webhook for run %s after %d attempts", event.RunID, maxRetries)
}

func (w *WebhookWorker) post(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// HMAC-подпись, если задан WEBHOOK_SECRET
	if w.cfg.WebhookSecret != "" {
		req.Header.Set(signatureHeader, Sign(payload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// Sign генерирует HMAC-SHA256 подпись для данных в hex
func Sign(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
