package di

import (
	"github.com/prohmpiriya/onboarding-console/internal/client"
	"github.com/prohmpiriya/onboarding-console/internal/handler"
	"github.com/prohmpiriya/onboarding-console/internal/ingest"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
	"github.com/prohmpiriya/onboarding-console/internal/service"
	"github.com/prohmpiriya/onboarding-console/internal/session"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

// Container holds all dependencies for the console service
type Container struct {
	// Infrastructure
	EnvClient client.EnvironmentClient
	Sessions  session.Store

	// Core components
	Fetcher   *metadata.Fetcher
	Processor *ingest.Processor

	// Services
	ConsoleService service.ConsoleService

	// Handlers
	Handlers *handler.Handlers
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log *logger.Logger) *Container {
	c := &Container{
		EnvClient: client.NewHTTPEnvironmentClient(cfg, log),
		Sessions:  session.NewMemoryStore(),
	}

	c.Fetcher = metadata.NewFetcher(c.EnvClient, log)
	c.Processor = ingest.NewProcessor(ingest.NewCSVParser())

	c.ConsoleService = service.NewConsoleService(
		cfg,
		c.EnvClient,
		c.Fetcher,
		c.Processor,
		c.Sessions,
		log,
	)

	c.Handlers = &handler.Handlers{
		Health:  handler.NewHealthHandler(cfg.App.Version),
		Session: handler.NewSessionHandler(c.ConsoleService),
		Country: handler.NewCountryHandler(c.ConsoleService),
		Tenant:  handler.NewTenantHandler(c.ConsoleService),
	}

	return c
}
