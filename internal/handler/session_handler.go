package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/onboarding-console/internal/dto"
	"github.com/prohmpiriya/onboarding-console/internal/service"
	"github.com/prohmpiriya/onboarding-console/pkg/response"
)

// SessionHandler handles console session HTTP requests
type SessionHandler struct {
	consoleService service.ConsoleService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(consoleService service.ConsoleService) *SessionHandler {
	return &SessionHandler{consoleService: consoleService}
}

// Create handles session creation: credentials in, metadata pass out.
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.consoleService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	resp := dto.CreateSessionResponse{
		SessionID:  result.SessionID,
		Countries:  result.Countries,
		Timezones:  result.Timezones,
		Currencies: result.Currencies,
	}
	for _, env := range result.Fetched {
		resp.EnvironmentsFetched = append(resp.EnvironmentsFetched, string(env))
	}
	for _, env := range result.Failed {
		resp.EnvironmentsFailed = append(resp.EnvironmentsFailed, string(env))
	}

	c.JSON(http.StatusCreated, response.Success(resp))
}

// GetMetadata handles retrieval of the unified metadata snapshot.
// GET /api/v1/sessions/:id/metadata
func (h *SessionHandler) GetMetadata(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Session ID is required"))
		return
	}

	snapshot, err := h.consoleService.Snapshot(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, response.Error(response.ErrCodeSessionNotFound, "Session not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewSnapshotResponse(snapshot)))
}
