package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/models"
)

// CreateRunRequest DTO для запуска пайплайна
// @Description DTO для запуска пайплайна
type CreateRunRequest struct {
	InputPath  string `json:"input_path" validate:"required"`
	OutputPath string `json:"output_path" validate:"required,endswith=.parquet"`
}

// RunResponse DTO для ответа с информацией о запуске
// @Description DTO для ответа с информацией о запуске
type RunResponse struct {
	ID          uuid.UUID          `json:"id"`
	InputPath   string             `json:"input_path"`
	OutputPath  string             `json:"output_path"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	CleanStats  models.CleanStats  `json:"clean_stats"`
	EnrichStats models.EnrichStats `json:"enrich_stats"`
	Report      *models.Report     `json:"report,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	DurationMS  int64              `json:"duration_ms"`
}

// RunErrorResponse DTO для ответа о неудачном запуске
// @Description DTO для ответа о неудачном запуске
type RunErrorResponse struct {
	Error string    `json:"error"`
	RunID uuid.UUID `json:"run_id"`
}
