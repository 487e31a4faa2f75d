package main

import (
	"context"
	"fmt"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/digest/service"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/postgres"
	"golang-stock-digest/pkg/redis"
	"golang-stock-digest/pkg/telegram"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg           *config.Config
	log           *logger.Logger
	bot           telegram.Bot
	digest        service.DigestService
	watchlistRepo repository.WatchlistRepository
	signalRepo    repository.TickerSignalRepository
	cursorRepo    repository.CursorRepository
	closers       []func()
}

func newApp(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*app, error) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return nil, fmt.Errorf("telegram.bot_token and telegram.chat_id are required")
	}
	a := &app{cfg: cfg, log: appLogger}

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	// Redis is optional; without it the update offset lives in memory
	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		a.cursorRepo = repository.NewRedisCursorRepository(redisClient.Client)
	} else {
		appLogger.Warn("Redis is not configured, Telegram offset will not survive restarts")
		a.cursorRepo = repository.NewMemoryCursorRepository()
	}

	genAiClient, err := repository.NewGeminiClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if genAiClient == nil {
		appLogger.Warn("Gemini API key is not set, using heuristic classification")
	}

	bot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.bot = bot

	// Initialize repositories
	sentRepo := repository.NewSentNewsRepository(db.DB)
	a.watchlistRepo = repository.NewWatchlistRepository(db.DB)
	a.signalRepo = repository.NewTickerSignalRepository(db.DB)
	quoteRepo := repository.NewQuoteRepository(cfg, appLogger)
	symbolRepo := repository.NewSymbolRepository(cfg, appLogger)
	llmRepo := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)

	fetchers := []repository.HeadlineFetcher{
		repository.NewNewsAPIRepository(cfg, appLogger),
		repository.NewYahooRSSRepository(cfg, appLogger),
		repository.NewGoogleNewsRepository(cfg, appLogger),
	}

	// Initialize services
	queryBuilder := service.NewQueryBuilder(symbolRepo, appLogger, cfg.Digest.MaxAlternateNames)
	aggregator := service.NewAggregator(queryBuilder, fetchers, appLogger, cfg.Digest.MaxConcurrent)
	classifier := service.NewClassifier(llmRepo, appLogger)
	decider := service.NewDecisionSynthesizer(llmRepo, appLogger)

	a.digest = service.NewDigestService(cfg, appLogger, aggregator, classifier, decider,
		sentRepo, a.watchlistRepo, a.signalRepo, quoteRepo, bot)
	return a, nil
}

// Close releases connections in reverse order of creation. It is safe to call twice.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
