package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoretrack/scoretrack-backend/internal/config"
	"github.com/scoretrack/scoretrack-backend/internal/middleware"
	"github.com/scoretrack/scoretrack-backend/internal/response"
	"github.com/scoretrack/scoretrack-backend/internal/service"
)

// ScoreHandler handles score upload, template download, series, and stats.
type ScoreHandler struct {
	scoreService *service.ScoreService
	cfg          *config.Config
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scoreService *service.ScoreService, cfg *config.Config) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService, cfg: cfg}
}

// Upload godoc
// POST /api/v1/teacher/scores/upload
// Accepts a filled template (.xlsx or .csv) and publishes the scores in it.
func (h *ScoreHandler) Upload(c *gin.Context) {
	claims := middleware.GetClaims(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return
	}

	rows, err := service.DecodeScoreSheet(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedUpload):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrDecode):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrSpreadsheetInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	report, err := h.scoreService.Ingest(c.Request.Context(), claims.UserID, rows)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// Template godoc
// GET /api/v1/teacher/scores/template?format=xlsx|csv
// Streams the authoritative upload template.
func (h *ScoreHandler) Template(c *gin.Context) {
	if c.DefaultQuery("format", "xlsx") == "csv" {
		data, err := service.BuildScoreTemplateCSV()
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="score_template.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
		return
	}

	data, err := service.BuildScoreTemplateXLSX()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="score_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Series godoc
// GET /api/v1/student/scores
// Returns the authenticated student's per-teacher score series.
func (h *ScoreHandler) Series(c *gin.Context) {
	claims := middleware.GetClaims(c)

	series, err := h.scoreService.SeriesForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"series": series})
}

// Stats godoc
// GET /api/v1/teacher/stats
func (h *ScoreHandler) Stats(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stats, err := h.scoreService.StatsForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
