package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyAllowList(t *testing.T) {
	t.Chdir(t.TempDir()) // без .env
	t.Setenv("ALLOWED_VIOLATION_TYPES", "")
	t.Setenv("HTTP_PORT", "8080")

	cfg, err := LoadConfig()
	require.Error(t, err, "empty allow-list must be rejected")
	assert.Nil(t, cfg)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALLOWED_VIOLATION_TYPES", " Speeding , Red Light ,")
	t.Setenv("TIMEZONE", "Europe/Moscow")
	t.Setenv("WEBHOOK_BASE_DELAY", "2s")
	t.Setenv("WEBHOOK_MAX_RETRIES", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"Speeding", "Red Light"}, cfg.AllowedViolationTypes)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, DefaultTimestampLayout, cfg.TimestampLayout)
	assert.Equal(t, 2*time.Second, cfg.WebhookBaseDelay)
	assert.Equal(t, 3, cfg.WebhookMaxRetries, "invalid int falls back to default")
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoadConfig_DataDir(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PIPELINE_DATA_DIR", "/srv/violations")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/violations", cfg.DataDir)

	t.Setenv("PIPELINE_DATA_DIR", "")
	_, err = LoadConfig()
	assert.Error(t, err, "empty data directory must be rejected")
}

func TestValidate_ScheduleNeedsPaths(t *testing.T) {
	cfg := Default()
	cfg.PipelineSchedule = "@every 1h"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "PIPELINE_SCHEDULE")

	cfg.PipelineInput = "in.csv"
	cfg.PipelineOutput = "out.parquet"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_OutputExtension(t *testing.T) {
	cfg := Default()
	cfg.PipelineOutput = "out.csv"
	assert.Error(t, cfg.Validate())
}

func TestRequireDatabase(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.RequireDatabase())
	cfg.DatabaseURL = "postgres://localhost/db"
	assert.NoError(t, cfg.RequireDatabase())
}
