package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-digest/internal/digest/delivery/command"
	delivery "golang-stock-digest/internal/digest/delivery/http"
	_ "golang-stock-digest/internal/digest/docs"
	"golang-stock-digest/internal/digest/service"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Digest Service", logger.Field("name", cfg.App.Name))

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", logger.ErrorField(err))
	}
	defer a.Close()

	// Scheduled digests
	scheduler := service.NewSchedulerService(cfg, appLogger, a.digest)
	utils.GoSafe(func() {
		if err := scheduler.Start(ctx); err != nil {
			appLogger.Error("Scheduler failed to start", logger.ErrorField(err))
			stop()
		}
	})

	// Telegram commands
	handler := command.NewHandler(cfg, appLogger, a.bot, a.digest, a.watchlistRepo, a.cursorRepo)
	utils.GoSafe(func() {
		_ = handler.Run(logger.WithRunID(ctx, uuid.NewString()))
	})

	// HTTP API
	var e *echo.Echo
	if cfg.API.Port > 0 {
		e = echo.New()
		e.HideBanner = true
		e.GET("/healthz", delivery.Healthz)

		digestHandler := delivery.NewDigestHandler(a.digest, a.signalRepo, cfg, appLogger)
		apiV1 := e.Group("/api/v1")
		digestHandler.RegisterRoutes(apiV1)
		e.GET("/swagger/*", swagger.WrapHandler)

		utils.GoSafe(func() {
			addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
			appLogger.Info("HTTP server starting", logger.Field("address", addr))
			if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
				appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
				stop() // trigger shutdown
			}
		})
	}

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down digest service...")
	if e != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
		}
	}
	appLogger.Info("Digest service stopped")
}
