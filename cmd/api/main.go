package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/app"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/config"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("prod", os.Stderr).Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.App.Env, os.Stdout)
	logger.Info("config loaded, connecting to DB and Redis...", "env", cfg.App.Env, "version", cfg.App.Version)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Error("app init", "error", err)
		os.Exit(1)
	}
	logger.Info("app ready, starting HTTP server")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("HTTP server error", "error", err)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown", "error", err)
		exitCode = 1
	}
	if err := application.Close(ctx); err != nil {
		logger.Error("app close", "error", err)
		exitCode = 1
	}
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
