package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoretrack/scoretrack-backend/internal/middleware"
	"github.com/scoretrack/scoretrack-backend/internal/model"
	"github.com/scoretrack/scoretrack-backend/internal/response"
	"github.com/scoretrack/scoretrack-backend/internal/service"
	"github.com/scoretrack/scoretrack-backend/internal/validator"
)

// ConnectionHandler handles the student–teacher connection endpoints.
type ConnectionHandler struct {
	connectionService *service.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// Connect godoc
// POST /api/v1/student/connections
// Connects the authenticated student to a teacher by code.
func (h *ConnectionHandler) Connect(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.ConnectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	conn, err := h.connectionService.Connect(c.Request.Context(), claims.UserID, req.TeacherCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeacherCodeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTeacherCodeNotFound)
		case errors.Is(err, service.ErrAlreadyConnected):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyConnected)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"connection": conn})
}

// ListForStudent godoc
// GET /api/v1/student/connections
func (h *ConnectionHandler) ListForStudent(c *gin.Context) {
	claims := middleware.GetClaims(c)

	conns, err := h.connectionService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"connections": conns})
}

// ListForTeacher godoc
// GET /api/v1/teacher/connections
// Returns the teacher's roster of connected students with score counts.
func (h *ConnectionHandler) ListForTeacher(c *gin.Context) {
	claims := middleware.GetClaims(c)

	conns, err := h.connectionService.ListForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"connections": conns})
}
