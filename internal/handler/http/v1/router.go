package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Запуски пайплайна и архив
	runs := api.Group("/runs")
	{
		runs.POST("", h.createRun)
		runs.GET("", h.listRuns)
		runs.GET("/:id", h.getRun)
		runs.GET("/:id/report", h.getRunReport)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
