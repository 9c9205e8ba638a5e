package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
	"github.com/IstiN/dmtools-sub007/internal/report"
	"github.com/IstiN/dmtools-sub007/internal/storage"
)

// Handler handles API requests
type Handler struct {
	generator *report.Generator
	store     storage.Storage
}

// NewHandler creates a new API handler
func NewHandler(generator *report.Generator, store storage.Storage) *Handler {
	return &Handler{
		generator: generator,
		store:     store,
	}
}

// GenerateReports runs a report job posted as JSON and returns the produced
// documents with their written paths.
// POST /api/v1/reports/generate
func (h *Handler) GenerateReports(c *gin.Context) {
	var job report.JobConfig
	if err := c.ShouldBindJSON(&job); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid job config: "+err.Error()))
		return
	}

	results, err := h.generator.GenerateReports(c.Request.Context(), &job)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": results,
	})
}

// ListRuns returns recent report runs, newest first.
// GET /api/v1/runs?report=<name>&limit=<n>
func (h *Handler) ListRuns(c *gin.Context) {
	reportName := c.Query("report")
	limit := parseIntQuery(c, "limit", 20)

	runs, err := h.store.ListRuns(c.Request.Context(), reportName, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
	})
}

// GetRun returns one run including its full document.
// GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
