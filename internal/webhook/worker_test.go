package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestWorker создает воркер без Redis: тестируется только доставка
func newTestWorker(t *testing.T, url string) (*WebhookWorker, *[]time.Duration) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := config.Default()
	cfg.WebhookURL = url
	cfg.WebhookSecret = "s3cret"
	cfg.WebhookMaxRetries = 3
	cfg.WebhookBaseDelay = 10 * time.Millisecond

	w := NewWebhookWorker(nil, logger, cfg)
	var delays []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) { delays = append(delays, d) }
	return w, &delays
}

func testPayload(t *testing.T) []byte {
	t.Helper()
	run := &models.Run{
		ID:         uuid.New(),
		Status:     models.RunStatusSucceeded,
		InputPath:  "in.csv",
		OutputPath: "out.parquet",
		Report:     &models.Report{TotalCount: 7, GeoPopulatedCount: 3},
	}
	payload, err := json.Marshal(NewRunEvent(run, time.Now()))
	require.NoError(t, err)
	return payload
}

func TestDeliver_SignedPayload(t *testing.T) {
	payload := testPayload(t)
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, Sign(body, "s3cret"), r.Header.Get(signatureHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		got.Store(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	worker, delays := newTestWorker(t, server.URL)

	require.NoError(t, worker.Deliver(context.Background(), payload))
	assert.Equal(t, payload, got.Load())
	assert.Empty(t, *delays)

	var event RunEvent
	require.NoError(t, json.Unmarshal(got.Load().([]byte), &event))
	assert.Equal(t, 7, event.TotalCount)
	assert.Equal(t, 3, event.GeoPopulatedCount)
}

func TestDeliver_RetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	worker, delays := newTestWorker(t, server.URL)

	require.NoError(t, worker.Deliver(context.Background(), testPayload(t)))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *delays)
}

func TestDeliver_GivesUp(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	worker, _ := newTestWorker(t, server.URL)

	err := worker.Deliver(context.Background(), testPayload(t))
	require.Error(t, err)
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliver_NoURL(t *testing.T) {
	worker, _ := newTestWorker(t, "")
	assert.NoError(t, worker.Deliver(context.Background(), testPayload(t)))
}

func TestDeliver_InvalidPayload(t *testing.T) {
	worker, _ := newTestWorker(t, "http://127.0.0.1:1")
	assert.Error(t, worker.Deliver(context.Background(), []byte("{")))
}

func TestNewRunEvent_FailedRun(t *testing.T) {
	run := &models.Run{ID: uuid.New(), Status: models.RunStatusFailed, Error: "boom"}

	event := NewRunEvent(run, time.Unix(0, 0))

	assert.Equal(t, run.ID, event.RunID)
	assert.Equal(t, "boom", event.Error)
	assert.Zero(t, event.TotalCount)
}

func TestSign(t *testing.T) {
	assert.Len(t, Sign([]byte("payload"), "key"), 64)
	assert.NotEqual(t, Sign([]byte("payload"), "key"), Sign([]byte("payload"), "other"))
}
