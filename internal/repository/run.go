package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/service"
)

const runCacheTTL = 5 * time.Minute

type RunRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewRunRepository(db *pgxpool.Pool, redisClient *redis.Client) service.RunRepository {
	return &RunRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Save сохраняет запуск в архив; повторное сохранение с тем же ID перезаписывает запись
func (r *RunRepository) Save(ctx context.Context, run *models.Run) error {
	cleanStats, enrichStats, report, err := marshalRunDocs(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pipeline_runs (id, input_path, output_path, status, error, clean_stats, enrich_stats, report, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			clean_stats = EXCLUDED.clean_stats,
			enrich_stats = EXCLUDED.enrich_stats,
			report = EXCLUDED.report,
			finished_at = EXCLUDED.finished_at;
	`
	_, err = r.db.Exec(ctx, query,
		run.ID,
		run.InputPath,
		run.OutputPath,
		run.Status,
		run.Error,
		cleanStats,
		enrichStats,
		report,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetByID возвращает запуск по его UUID
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
		SELECT id, input_path, output_path, status, error, clean_stats, enrich_stats, report, started_at, finished_at
		FROM pipeline_runs
		WHERE id = $1;
	`
	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("run with id %s: %w", id, service.ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to get run by id: %w", err)
	}
	return run, nil
}

// ListRuns возвращает запуски от новых к старым с пагинацией
func (r *RunRepository) ListRuns(ctx context.Context, page, pageSize int) ([]*models.Run, error) {
	if page < 1 {
		page = 1
	}
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT id, input_path, output_path, status, error, clean_stats, enrich_stats, report, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return runs, nil
}

// GetRunFromCache пытается получить запуск из Redis; промах кеша - (nil, nil)
func (r *RunRepository) GetRunFromCache(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	val, err := r.redisClient.Get(ctx, runCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run from cache: %w", err)
	}

	run := &models.Run{}
	if err := json.Unmarshal(val, run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run from cache: %w", err)
	}
	return run, nil
}

// SetRunCache сохраняет запуск в Redis
func (r *RunRepository) SetRunCache(ctx context.Context, run *models.Run) error {
	val, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, runCacheKey(run.ID), val, runCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set run in cache: %w", err)
	}
	return nil
}

func runCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("run:%s", id.String())
}

func marshalRunDocs(run *models.Run) (cleanStats, enrichStats, report []byte, err error) {
	if cleanStats, err = json.Marshal(run.CleanStats); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal clean stats: %w", err)
	}
	if enrichStats, err = json.Marshal(run.EnrichStats); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal enrich stats: %w", err)
	}
	// report остается NULL для неудачных запусков
	if run.Report != nil {
		if report, err = json.Marshal(run.Report); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal report: %w", err)
		}
	}
	return cleanStats, enrichStats, report, nil
}

func scanRun(row pgx.Row) (*models.Run, error) {
	run := &models.Run{}
	var cleanStats, enrichStats, report []byte
	err := row.Scan(
		&run.ID,
		&run.InputPath,
		&run.OutputPath,
		&run.Status,
		&run.Error,
		&cleanStats,
		&enrichStats,
		&report,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cleanStats, &run.CleanStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal clean stats: %w", err)
	}
	if err := json.Unmarshal(enrichStats, &run.EnrichStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrich stats: %w", err)
	}
	if report != nil {
		run.Report = &models.Report{}
		if err := json.Unmarshal(report, run.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
	}
	return run, nil
}
