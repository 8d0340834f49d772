package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/onboarding-console/pkg/logger"
	"github.com/prohmpiriya/onboarding-console/pkg/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Session *SessionHandler
	Country *CountryHandler
	Tenant  *TenantHandler
}

// SetupRouter builds the gin engine with middleware and all routes.
func SetupRouter(h *Handlers, log *logger.Logger, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS())

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.Session.Create)
		v1.GET("/sessions/:id/metadata", h.Session.GetMetadata)

		v1.POST("/countries", h.Country.Submit)
		v1.POST("/countries/csv", h.Country.ValidateCSV)
		v1.GET("/templates/states", h.Country.StateTemplate)
		v1.GET("/templates/cities", h.Country.CityTemplate)

		v1.POST("/tenants", h.Tenant.Onboard)
	}

	return router
}
