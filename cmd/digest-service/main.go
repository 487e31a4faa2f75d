package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var configPath string

var intradayCmd = &cobra.Command{
	Use:   "intraday",
	Short: "Sends the news digest for the watchlist once",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce("intraday", func(ctx context.Context, a *app) error { return a.digest.RunIntraday(ctx) })
	},
}

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Sends the Buy/Sell/Hold signal digest for the watchlist once",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce("signal", func(ctx context.Context, a *app) error { return a.digest.RunSignal(ctx) })
	},
}

var eodCmd = &cobra.Command{
	Use:   "eod",
	Short: "Sends the end-of-day price summary once",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce("eod", func(ctx context.Context, a *app) error { return a.digest.RunEOD(ctx) })
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the Telegram command bot, the scheduled digests and the HTTP API",
	Run:   runServe,
}

func loadConfigAndLogger() (*config.Config, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runOnce(name string, fn func(ctx context.Context, a *app) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger := loadConfigAndLogger()
	defer func() { _ = appLogger.Sync() }()

	ctx = logger.WithRunID(ctx, uuid.NewString())
	appLogger.InfoContext(ctx, "Starting digest run", logger.StringField("command", name), logger.Field("name", cfg.App.Name))

	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", logger.ErrorField(err))
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		appLogger.ErrorContext(ctx, "Digest run failed", logger.ErrorField(err), logger.StringField("command", name))
		a.Close()
		os.Exit(1)
	}
	appLogger.InfoContext(ctx, "Digest run finished", logger.StringField("command", name))
}

// @title Stock News Digest API
// @version 1.0
// @description Read-only access to news digests, signal digests and recorded signals.
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   "digest-service",
		Short: "Financial news digest and signal bot",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-digest.yaml", "Path to the configuration file")

	rootCmd.AddCommand(intradayCmd, signalCmd, eodCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing digest-service CLI: %s\n", err)
		os.Exit(1)
	}
}
