package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/onboarding-console/internal/dto"
	"github.com/prohmpiriya/onboarding-console/internal/service"
	"github.com/prohmpiriya/onboarding-console/pkg/response"
)

// TenantHandler handles tenant onboarding HTTP requests
type TenantHandler struct {
	consoleService service.ConsoleService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(consoleService service.ConsoleService) *TenantHandler {
	return &TenantHandler{consoleService: consoleService}
}

// Onboard handles tenant onboarding dispatch.
// POST /api/v1/tenants
func (h *TenantHandler) Onboard(c *gin.Context) {
	var req dto.OnboardTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	results, validationErrs, err := h.consoleService.OnboardTenant(
		c.Request.Context(), req.SessionID, &req.Tenant, req.Environments)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, response.ValidationFailed(validationErrs))
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.DispatchResponse{Results: results}))
}

// writeDispatchError maps service errors from the dispatch path onto HTTP
// responses.
func writeDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, response.Error(response.ErrCodeSessionNotFound, "Session not found"))
	case errors.Is(err, service.ErrNoEnvironmentsSelected):
		c.JSON(http.StatusBadRequest, response.BadRequest("At least one environment must be selected"))
	case errors.Is(err, service.ErrUnknownEnvironment),
		errors.Is(err, service.ErrEnvironmentNotConfigured):
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeUnknownEnv, err.Error()))
	case errors.Is(err, service.ErrDispatchFailed):
		c.JSON(http.StatusBadGateway, response.DispatchFailed(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
	}
}
