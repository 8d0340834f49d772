package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/onboarding-console/internal/di"
	"github.com/prohmpiriya/onboarding-console/internal/dto"
	"github.com/prohmpiriya/onboarding-console/internal/handler"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Logger.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Logger.Development,
		OutputPath:  cfg.Logger.OutputPath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	log.Info("starting onboarding console",
		zap.String("version", cfg.App.Version),
		zap.Int("metadata_environments", len(cfg.Metadata.Environments)))

	if err := dto.RegisterValidators(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}

	container := di.NewContainer(cfg, log)
	router := handler.SetupRouter(container.Handlers, log, cfg.App.Debug)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("error shutting down server", zap.Error(err))
	}
}
