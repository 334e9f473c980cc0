package v1

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/ingest"
	"github.com/shenikar/violation_pipeline/internal/report"
	"github.com/shenikar/violation_pipeline/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	pipelineService service.PipelineService
	logger          *logrus.Logger
	validate        *validator.Validate
	dataDir         string
}

// NewHandler создает хэндлер. Пути из запросов на запуск ограничены каталогом dataDir.
func NewHandler(pipelineService service.PipelineService, logger *logrus.Logger, dataDir string) *Handler {
	root, err := filepath.Abs(dataDir)
	if err != nil {
		root = filepath.Clean(dataDir)
	}
	return &Handler{
		pipelineService: pipelineService,
		logger:          logger,
		validate:        validator.New(),
		dataDir:         root,
	}
}

// @Summary Run the pipeline
// @Description Ingest, clean, enrich and summarize a violations file, then export it to Parquet. The run is archived whether it succeeds or fails. Paths are resolved against PIPELINE_DATA_DIR and must stay inside it.
// @Tags Runs
// @Accept json
// @Produce json
// @Param run body CreateRunRequest true "Pipeline run request"
// @Success 201 {object} RunResponse
// @Failure 400 {object} map[string]string "Invalid request body, validation error or path outside the data directory"
// @Failure 422 {object} RunErrorResponse "Input file could not be ingested"
// @Failure 500 {object} RunErrorResponse "Pipeline run failed"
// @Router /runs [post]
func (h *Handler) createRun(c *gin.Context) {
	var input CreateRunRequest
	log := h.logger.WithField("method", "createRun")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := resolveRunPaths(h.dataDir, input)
	if err != nil {
		log.WithError(err).Warn("Rejected path outside data directory")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.pipelineService.Run(c.Request.Context(), DTOToRunRequest(input))
	if err != nil {
		resp := RunErrorResponse{Error: err.Error()}
		if run != nil {
			resp.RunID = run.ID
		}
		if ingest.IsFatal(err) {
			log.WithError(err).Warn("Input rejected by pipeline")
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		log.WithError(err).Error("Pipeline run failed")
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusCreated, ModelToRunResponse(run))
}

// @Summary Get a list of runs
// @Description Get a paginated list of archived pipeline runs, newest first.
// @Tags Runs
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} RunResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /runs [get]
func (h *Handler) listRuns(c *gin.Context) {
	log := h.logger.WithField("method", "listRuns")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	runs, err := h.pipelineService.ListRuns(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list runs from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToRunResponses(runs))
}

// @Summary Get run by ID
// @Description Get a single archived pipeline run with its report.
// @Tags Runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunResponse
// @Failure 400 {object} map[string]string "Invalid run ID"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /runs/{id} [get]
func (h *Handler) getRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}
	log := h.logger.WithField("method", "getRun").WithField("id", id)

	run, err := h.pipelineService.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			log.WithError(err).Warn("Run not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		log.WithError(err).Error("Failed to get run from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToRunResponse(run))
}

// @Summary Get run report charts
// @Description Render the run's summary report as an HTML page with bar charts.
// @Tags Runs
// @Produce html
// @Param id path string true "Run ID"
// @Success 200 {string} string "HTML page"
// @Failure 400 {object} map[string]string "Invalid run ID"
// @Failure 404 {object} map[string]string "Run or report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /runs/{id}/report [get]
func (h *Handler) getRunReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}
	log := h.logger.WithField("method", "getRunReport").WithField("id", id)

	run, err := h.pipelineService.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		log.WithError(err).Error("Failed to get run from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if run.Report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no report"})
		return
	}

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, run); err != nil {
		log.WithError(err).Error("Failed to render report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
