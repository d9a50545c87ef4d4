package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"hotel-shift-bot/internal/api"
	"hotel-shift-bot/internal/app"
	"hotel-shift-bot/internal/config"
	"hotel-shift-bot/internal/logging"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.GetConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.RequireAPI(); err != nil {
		logger.WithError(err).Fatal("Invalid API configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Warn("Error during shutdown")
		}
	}()

	server, err := api.NewServer(a.Engine, cfg.JWT.Secret, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create API server")
	}

	errorLog := logger.WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      server.Mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     log.New(errorLog, "", 0),
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
	}
	logger.Info("HTTP server stopped")
}
