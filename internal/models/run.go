package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run - запись об одном запуске пайплайна
type Run struct {
	ID          uuid.UUID   `json:"id"`
	InputPath   string      `json:"input_path"`
	OutputPath  string      `json:"output_path"`
	Status      string      `json:"status"`
	Error       string      `json:"error,omitempty"`
	CleanStats  CleanStats  `json:"clean_stats"`
	EnrichStats EnrichStats `json:"enrich_stats"`
	Report      *Report     `json:"report,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
}

// RunRequest - параметры запуска: входной файл и путь выгрузки
type RunRequest struct {
	InputPath  string
	OutputPath string
}
