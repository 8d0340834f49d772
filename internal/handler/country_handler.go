package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/onboarding-console/internal/dto"
	"github.com/prohmpiriya/onboarding-console/internal/ingest"
	"github.com/prohmpiriya/onboarding-console/internal/service"
	"github.com/prohmpiriya/onboarding-console/pkg/response"
)

// CountryHandler handles country authoring HTTP requests
type CountryHandler struct {
	consoleService service.ConsoleService
}

// NewCountryHandler creates a new CountryHandler
func NewCountryHandler(consoleService service.ConsoleService) *CountryHandler {
	return &CountryHandler{consoleService: consoleService}
}

// ValidateCSV handles state/city CSV validation for a country draft.
// POST /api/v1/countries/csv (multipart: session_id, mode, country_code, states, cities)
func (h *CountryHandler) ValidateCSV(c *gin.Context) {
	var form dto.ValidateCSVForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	mode := ingest.Mode(form.Mode)
	if mode == "" {
		mode = ingest.ModeAdd
	}

	states, err := openUpload(c, "states")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if states != nil {
		defer states.Close()
	}
	cities, err := openUpload(c, "cities")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if cities != nil {
		defer cities.Close()
	}

	parsed, validationErrs, err := h.consoleService.ValidateCSV(
		form.SessionID, mode, form.CountryCode, asReader(states), asReader(cities))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, response.Error(response.ErrCodeSessionNotFound, "Session not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	if len(validationErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, response.ValidationFailed(validationErrs))
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.ValidateCSVResponse{States: parsed}))
}

// Submit handles country creation/update dispatch.
// POST /api/v1/countries
func (h *CountryHandler) Submit(c *gin.Context) {
	var req dto.SubmitCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	requireStates := req.Mode != string(ingest.ModeUpdate)
	results, validationErrs, err := h.consoleService.SubmitCountry(
		c.Request.Context(), req.SessionID, &req.Country, requireStates, req.Environments)
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

// StateTemplate serves the blank states CSV template.
// GET /api/v1/templates/states
func (h *CountryHandler) StateTemplate(c *gin.Context) {
	serveTemplate(c, "state_template.csv", ingest.StateTemplate)
}

// CityTemplate serves the blank cities CSV template.
// GET /api/v1/templates/cities
func (h *CountryHandler) CityTemplate(c *gin.Context) {
	serveTemplate(c, "city_template.csv", ingest.CityTemplate)
}

func serveTemplate(c *gin.Context, filename, content string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

// openUpload returns the named multipart file, or nil when absent.
func openUpload(c *gin.Context, field string) (multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return fileHeader.Open()
}

// asReader widens a possibly-nil multipart file into a possibly-nil reader.
func asReader(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
