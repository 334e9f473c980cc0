package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultTimestampLayout    = "2006-01-02 15:04:05"
	DefaultVehicleType        = "Unknown"
	DefaultDataDir            = "data"
	defaultAllowedViolations  = "Speeding,Red Light,Illegal Turn,Illegal Parking"
	defaultWebhookMaxRetries  = 3
	defaultWebhookBaseDelay   = 500 * time.Millisecond
	defaultWebhookHTTPTimeout = 5 * time.Second
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"required"`

	// Pipeline Config
	TimestampLayout       string   `env:"TIMESTAMP_LAYOUT" validate:"required"`
	Timezone              string   `env:"TIMEZONE" envDefault:"UTC" validate:"required"`
	AllowedViolationTypes []string `env:"ALLOWED_VIOLATION_TYPES" validate:"required,min=1,dive,required"`
	DefaultVehicleType    string   `env:"DEFAULT_VEHICLE_TYPE" envDefault:"Unknown" validate:"required"`
	PipelineInput         string   `env:"PIPELINE_INPUT"`
	PipelineOutput        string   `env:"PIPELINE_OUTPUT" validate:"omitempty,endswith=.parquet"`
	PipelineSchedule      string   `env:"PIPELINE_SCHEDULE"`
	DataDir               string   `env:"PIPELINE_DATA_DIR" envDefault:"data" validate:"required"`

	// Archive Config
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080" validate:"required,numeric"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3" validate:"gte=1"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"500ms" validate:"gt=0"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		TimestampLayout:       getEnv("TIMESTAMP_LAYOUT", DefaultTimestampLayout),
		Timezone:              getEnv("TIMEZONE", "UTC"),
		AllowedViolationTypes: getEnvAsList("ALLOWED_VIOLATION_TYPES", defaultAllowedViolations),
		DefaultVehicleType:    getEnv("DEFAULT_VEHICLE_TYPE", DefaultVehicleType),
		PipelineInput:         os.Getenv("PIPELINE_INPUT"),
		PipelineOutput:        os.Getenv("PIPELINE_OUTPUT"),
		PipelineSchedule:      os.Getenv("PIPELINE_SCHEDULE"),
		DataDir:               getEnv("PIPELINE_DATA_DIR", DefaultDataDir),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvAsInt("REDIS_DB", 0),
		WebhookURL:            os.Getenv("WEBHOOK_URL"),
		WebhookSecret:         os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:        getEnvAsDuration("WEBHOOK_TIMEOUT", defaultWebhookHTTPTimeout),
		WebhookMaxRetries:     getEnvAsInt("WEBHOOK_MAX_RETRIES", defaultWebhookMaxRetries),
		WebhookBaseDelay:      getEnvAsDuration("WEBHOOK_BASE_DELAY", defaultWebhookBaseDelay),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default возвращает конфигурацию пайплайна со значениями по умолчанию, без чтения окружения
func Default() *Config {
	return &Config{
		LogLevel:              "info",
		TimestampLayout:       DefaultTimestampLayout,
		Timezone:              "UTC",
		AllowedViolationTypes: splitList(defaultAllowedViolations),
		DefaultVehicleType:    DefaultVehicleType,
		DataDir:               DefaultDataDir,
		HTTPPort:              "8080",
		RedisAddr:             "localhost:6379",
		WebhookTimeout:        defaultWebhookHTTPTimeout,
		WebhookMaxRetries:     defaultWebhookMaxRetries,
		WebhookBaseDelay:      defaultWebhookBaseDelay,
	}
}

// Validate проверяет конфигурацию по тегам validate
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.PipelineSchedule != "" && (c.PipelineInput == "" || c.PipelineOutput == "") {
		return fmt.Errorf("invalid configuration: PIPELINE_SCHEDULE requires PIPELINE_INPUT and PIPELINE_OUTPUT")
	}
	return nil
}

// RequireDatabase проверяет настройки, обязательные для режима serve
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую
func getEnvAsList(key string, defaultValue string) []string {
	return splitList(getEnv(key, defaultValue))
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
