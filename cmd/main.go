package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/generator"
	v1 "github.com/shenikar/violation_pipeline/internal/handler/http/v1"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/report"
	"github.com/shenikar/violation_pipeline/internal/repository"
	"github.com/shenikar/violation_pipeline/internal/scheduler"
	"github.com/shenikar/violation_pipeline/internal/service"
	"github.com/shenikar/violation_pipeline/internal/webhook"
	"github.com/shenikar/violation_pipeline/pkg/logger"
	"github.com/shenikar/violation_pipeline/pkg/postgres"
	redisclient "github.com/shenikar/violation_pipeline/pkg/redis"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "github.com/shenikar/violation_pipeline/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	rootCmd := newRootCmd(cfg)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.Fatalf("%s failed: %v", rootCmd.Name(), err)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "violation-pipeline",
		Short:         "Traffic violation ingestion pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.AddCommand(newRunCmd(cfg), newGenerateCmd(cfg), newServeCmd(cfg))
	return rootCmd
}

// newRunCmd выполняет один запуск без БД и печатает отчет в stdout
func newRunCmd(cfg *config.Config) *cobra.Command {
	var input, output, htmlPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the summary report",
		Long:  `The run command loads, cleans and enriches a violations file, writes it to Parquet and prints the summary report. Logs go to stderr.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" {
				return fmt.Errorf("both --input and --output are required")
			}
			log := logger.New(cfg.LogLevel, cmd.ErrOrStderr())

			svc := service.NewPipelineService(repository.NewMemoryRunRepository(), log, cfg, nil)
			run, runErr := svc.Run(cmd.Context(), models.RunRequest{InputPath: input, OutputPath: output})

			if err := report.Render(cmd.OutOrStdout(), run); err != nil {
				log.WithError(err).Error("Failed to print report")
			}
			if runErr != nil {
				return runErr
			}
			if htmlPath != "" {
				return writeHTMLReport(htmlPath, run)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", cfg.PipelineInput, "input file (.csv or .json)")
	cmd.Flags().StringVarP(&output, "output", "o", cfg.PipelineOutput, "destination Parquet file")
	cmd.Flags().StringVar(&htmlPath, "html", "", "also write the report charts to this HTML file")
	return cmd
}

func writeHTMLReport(path string, run *models.Run) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.RenderHTML(f, run)
}

// newGenerateCmd пишет синтетический набор данных для локальных запусков
func newGenerateCmd(cfg *config.Config) *cobra.Command {
	opts := generator.DefaultOptions()
	opts.Layout = cfg.TimestampLayout
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic violations file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
			if err := generator.WriteFile(out, generator.Generate(opts)); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"path": out, "count": opts.Count}).Info("Synthetic data written")
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Count, "count", "n", opts.Count, "number of records")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.MalformedRate, "malformed", opts.MalformedRate, "share of malformed timestamps")
	cmd.Flags().StringVar(&out, "out", "violations.csv", "output file (.csv or .json)")
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, webhook worker and scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireDatabase(); err != nil {
				return fmt.Errorf("invalid configuration for serve: %w", err)
			}
			serve(cfg)
			return nil
		},
	}
}

// @title Traffic Violation Pipeline API
// @version 1.0
// @description Runs the traffic violation ingestion pipeline and serves the run archive.
// @host localhost:8080
// @BasePath /api/v1
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func serve(cfg *config.Config) {
	// Инициализация логгера
	log := logger.New(cfg.LogLevel, os.Stdout)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Инициализация репозиториев
	runRepo := repository.NewRunRepository(dbpool, redisClient)

	// Инициализация сервисов
	pipelineService := service.NewPipelineService(runRepo, log, cfg, webhookPublisher)

	// Плановые запуски
	var sched *scheduler.Scheduler
	if cfg.PipelineSchedule != "" {
		sched, err = scheduler.New(pipelineService, cfg, log)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(pipelineService, log, cfg.DataDir)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server gracefully stopped")
}
