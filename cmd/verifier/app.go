package main

import (
	"context"
	"fmt"
	"log"

	"finfluencer-tracker/internal/verifier/config"
	"finfluencer-tracker/internal/verifier/repository"
	"finfluencer-tracker/internal/verifier/service"
	"finfluencer-tracker/pkg/logger"
	"finfluencer-tracker/pkg/metrics"
	"finfluencer-tracker/pkg/postgres"
	"finfluencer-tracker/pkg/redis"
	"finfluencer-tracker/pkg/telegram"

	"google.golang.org/genai"
)

// app holds everything the commands share.
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	metrics      *metrics.Registry
	verification service.VerificationService
	leaderboard  service.LeaderboardService
	closers      []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, withLock bool) *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	a := &app{cfg: cfg, logger: appLogger, metrics: metrics.NewRegistry()}
	a.closers = append(a.closers, func() { _ = appLogger.Sync() })

	db, err := postgres.NewDB(postgres.Config{
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
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	var locker service.BatchLocker
	if withLock {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		locker = service.NewRedisBatchLocker(redisClient.Client, cfg.Verifier.LockTTL, appLogger)
	}

	// Initialize repositories
	predictionRepo := repository.NewPredictionRepository(db.DB)
	verificationRepo := repository.NewVerificationRepository(db.DB)
	creatorRepo := repository.NewCreatorRepository(db.DB)
	marketDataRepo := repository.NewYahooFinanceRepository(cfg.MarketData, appLogger, a.metrics)
	searchRepo := repository.NewMultiSearchRepository(appLogger, a.metrics,
		repository.SearchProvider{Name: repository.SearchProviderExa, Repo: repository.NewExaSearchRepository(cfg.Search, appLogger)},
		repository.SearchProvider{Name: repository.SearchProviderNewsRSS, Repo: repository.NewNewsRSSRepository(cfg.Search, appLogger)},
	)

	var judgeRepo repository.JudgmentRepository
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		judgeRepo, err = repository.NewGeminiAIRepository(cfg.Gemini, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("Gemini API key not set, predictions are scored from market data only")
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	a.verification = service.NewVerificationService(service.Dependencies{
		Predictions:   predictionRepo,
		Verifications: verificationRepo,
		Creators:      creatorRepo,
		Outcomes:      service.NewOutcomeResolver(marketDataRepo, appLogger),
		Verifier:      service.NewSemanticVerifier(judgeRepo, appLogger, a.metrics),
		Search:        searchRepo,
		Locker:        locker,
		Notifier:      notifier,
		Metrics:       a.metrics,
		Logger:        appLogger,
	})
	a.leaderboard = service.NewLeaderboardService(creatorRepo, appLogger)
	return a
}

func listenAddr(host string, port int) string {
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}
