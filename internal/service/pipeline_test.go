package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/export"
	"github.com/shenikar/violation_pipeline/internal/ingest"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/service/mocks"
	"github.com/shenikar/violation_pipeline/internal/webhook"
	webhook_mocks "github.com/shenikar/violation_pipeline/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const header = "violation_id,timestamp,location,violation_type,vehicle_type,severity\n"

// newTestPipelineService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestPipelineService(t *testing.T) (*pipelineService, *mocks.MockRunRepository, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockRunRepository(ctrl)
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	service := NewPipelineService(repoMock, logger, config.Default(), webhookMock)
	return service.(*pipelineService), repoMock, webhookMock
}

func writeInput(t *testing.T, name, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))
	return input, filepath.Join(dir, "out", "violations.parquet")
}

func TestRun_Success(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestPipelineService(t)
	ctx := context.Background()
	input, output := writeInput(t, "violations.csv", header+
		"V1,2024-01-01 10:00:00,\"40.7128,-74.0060\",Speeding,Car,3\n"+
		"V2,malformed,INT001,Red Light,,5\n"+
		",2024-01-01 11:00:00,INT002,Speeding,Bus,1\n"+
		"V4,2024-01-01 12:00:00,INT003,Jaywalking,Car,2\n")

	// Ожидания
	var archived *models.Run
	repoMock.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, run *models.Run) error {
			archived = run
			return nil
		}).
		Times(1)
	webhookMock.EXPECT().
		Publish(ctx, gomock.AssignableToTypeOf(webhook.RunEvent{})).
		DoAndReturn(func(_ context.Context, event webhook.RunEvent) error {
			assert.Equal(t, models.RunStatusSucceeded, event.Status)
			assert.Equal(t, 2, event.TotalCount)
			return nil
		}).
		Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{InputPath: input, OutputPath: output})

	// Проверки
	require.NoError(t, err)
	assert.Same(t, run, archived)
	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Empty(t, run.Error)
	assert.Equal(t, models.CleanStats{
		Input:                 4,
		VehicleTypeDefaulted:  1,
		DroppedMissingID:      1,
		TimestampsNulled:      1,
		DroppedDisallowedType: 1,
		Output:                2,
	}, run.CleanStats)
	assert.Equal(t, 1, run.EnrichStats.Coordinates)
	assert.Equal(t, 1, run.EnrichStats.IntersectionCodes)

	require.NotNil(t, run.Report)
	assert.Equal(t, 2, run.Report.TotalCount)
	assert.Equal(t, 1, run.Report.GeoPopulatedCount)
	assert.Equal(t, 1, run.Report.NullCounts["timestamp"])
	assert.Equal(t, map[string]int{"Car": 1, "Unknown": 1}, run.Report.Distribution("vehicle_type"))
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	rows, err := parquet.ReadFile[export.Row](output)
	require.NoError(t, err)
	assert.Len(t, rows, run.Report.TotalCount)
}

func TestRun_EmptyInput(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestPipelineService(t)
	ctx := context.Background()
	input, output := writeInput(t, "violations.csv", header)

	// Ожидания
	repoMock.EXPECT().Save(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{InputPath: input, OutputPath: output})

	// Проверки
	require.NoError(t, err)
	assert.Zero(t, run.Report.TotalCount)
	assert.Zero(t, run.Report.Severity.Count)

	rows, err := parquet.ReadFile[export.Row](output)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_FatalInput(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestPipelineService(t)
	ctx := context.Background()
	input, output := writeInput(t, "violations.csv", header+"V1,2024-01-01 10:00:00,INT001,Speeding,Car,high\n")

	// Ожидания
	repoMock.EXPECT().
		Save(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, run *models.Run) error {
			assert.Equal(t, models.RunStatusFailed, run.Status)
			assert.NotEmpty(t, run.Error)
			return nil
		}).
		Times(1)
	webhookMock.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.RunEvent) error {
			assert.Equal(t, models.RunStatusFailed, event.Status)
			return nil
		}).
		Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{InputPath: input, OutputPath: output})

	// Проверки
	require.Error(t, err)
	assert.True(t, ingest.IsFatal(err))
	assert.Nil(t, run.Report)
	assert.NoFileExists(t, output)
}

func TestRun_MissingInput(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestPipelineService(t)
	ctx := context.Background()
	dir := t.TempDir()

	// Ожидания
	repoMock.EXPECT().Save(ctx, gomock.Any()).Return(nil).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{
		InputPath:  filepath.Join(dir, "absent.csv"),
		OutputPath: filepath.Join(dir, "out.parquet"),
	})

	// Проверки
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, models.RunStatusFailed, run.Status)
}

func TestRun_ArchiveAndPublishErrorsIgnored(t *testing.T) {
	// Подготовка
	service, repoMock, webhookMock := newTestPipelineService(t)
	ctx := context.Background()
	input, output := writeInput(t, "violations.json", `{"violation_id":"V1","timestamp":"2024-01-01 10:00:00","location":"1.5,2.5","violation_type":"Speeding","severity":"4"}`+"\n")

	// Ожидания
	repoMock.EXPECT().Save(ctx, gomock.Any()).Return(fmt.Errorf("db down")).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{InputPath: input, OutputPath: output})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Equal(t, 1, run.Report.GeoPopulatedCount)
	assert.Equal(t, 4.0, run.Report.Severity.Mean)
}

func TestRun_NilPublisher(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockRunRepository(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	service := NewPipelineService(repoMock, logger, config.Default(), nil)
	ctx := context.Background()
	input, output := writeInput(t, "violations.csv", header+"V1,2024-01-01 10:00:00,INT001,Speeding,Car,3\n")

	// Ожидания
	repoMock.EXPECT().Save(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	run, err := service.Run(ctx, models.RunRequest{InputPath: input, OutputPath: output})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, run.Report.TotalCount)
}

func TestGetRun_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()
	runID := uuid.New()
	expectedRun := &models.Run{ID: runID, Status: models.RunStatusSucceeded}

	// Ожидания
	repoMock.EXPECT().
		GetRunFromCache(ctx, runID).
		Return(expectedRun, nil).
		Times(1)

	// Действие
	run, err := service.GetRun(ctx, runID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedRun, run)
}

func TestGetRun_Success_FromDB(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()
	runID := uuid.New()
	expectedRun := &models.Run{ID: runID, Status: models.RunStatusFailed}

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetRunFromCache(ctx, runID).
		Return(nil, nil).
		Times(1)

	// 2. Попадание в БД
	repoMock.EXPECT().
		GetByID(ctx, runID).
		Return(expectedRun, nil).
		Times(1)

	// 3. Запись в кеш
	repoMock.EXPECT().
		SetRunCache(ctx, expectedRun).
		Return(nil).
		Times(1)

	// Действие
	run, err := service.GetRun(ctx, runID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedRun, run)
}

func TestGetRun_CacheErrorFallsBackToDB(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()
	runID := uuid.New()
	expectedRun := &models.Run{ID: runID}

	// Ожидания
	repoMock.EXPECT().GetRunFromCache(ctx, runID).Return(nil, fmt.Errorf("redis down")).Times(1)
	repoMock.EXPECT().GetByID(ctx, runID).Return(expectedRun, nil).Times(1)
	repoMock.EXPECT().SetRunCache(ctx, expectedRun).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	run, err := service.GetRun(ctx, runID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedRun, run)
}

func TestGetRun_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()
	runID := uuid.New()

	// Ожидания
	repoMock.EXPECT().GetRunFromCache(ctx, runID).Return(nil, nil).Times(1)
	repoMock.EXPECT().
		GetByID(ctx, runID).
		Return(nil, fmt.Errorf("repository: %w", ErrRunNotFound)).
		Times(1)

	// Действие
	run, err := service.GetRun(ctx, runID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_Success(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()
	expectedRuns := []*models.Run{
		{ID: uuid.New(), StartedAt: time.Now()},
		{ID: uuid.New(), StartedAt: time.Now().Add(-time.Hour)},
	}

	// Ожидания
	repoMock.EXPECT().
		ListRuns(ctx, 2, 10).
		Return(expectedRuns, nil).
		Times(1)

	// Действие
	runs, err := service.ListRuns(ctx, 2, 10)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedRuns, runs)
}

func TestListRuns_Pagination(t *testing.T) {
	testCases := []struct {
		name             string
		page             int
		pageSize         int
		expectedPage     int
		expectedPageSize int
	}{
		{"Valid params", 2, 50, 2, 50},
		{"Zero page", 0, 10, 1, 10},
		{"Negative page", -5, 10, 1, 10},
		{"Zero page size", 1, 0, 1, 20},
		{"Page size too large", 1, 101, 1, 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Подготовка
			service, repoMock, _ := newTestPipelineService(t)
			ctx := context.Background()

			// Ожидания
			repoMock.EXPECT().
				ListRuns(ctx, tc.expectedPage, tc.expectedPageSize).
				Return([]*models.Run{}, nil).
				Times(1)

			// Действие
			_, err := service.ListRuns(ctx, tc.page, tc.pageSize)

			// Проверки
			require.NoError(t, err)
		})
	}
}

func TestListRuns_RepoError(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestPipelineService(t)
	ctx := context.Background()

	// Ожидания
	repoMock.EXPECT().ListRuns(ctx, 1, 20).Return(nil, fmt.Errorf("db error")).Times(1)

	// Действие
	runs, err := service.ListRuns(ctx, 1, 20)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, runs)
}
