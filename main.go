package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"loan-workout/config"
	"loan-workout/domain"
	httpLayer "loan-workout/http"
	"loan-workout/observability"
	"loan-workout/repository"
	"loan-workout/service"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	var (
		redisClient *redis.Client
		db          *sql.DB
	)
	if cfg.OptionStore == "redis" || cfg.Cache == "redis" {
		redisClient = repository.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
	}

	var optionRepo repository.OptionRepository
	switch cfg.OptionStore {
	case "redis":
		optionRepo = repository.NewOptionRepositoryRedis(redisClient)
	case "postgres":
		db, err = repository.OpenPostgres(cfg.DBConn)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to postgres")
		}
		defer db.Close()
		pg := repository.NewOptionRepositoryPostgres(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pg.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("failed to create schema")
		}
		optionRepo = pg
	default:
		optionRepo = repository.NewOptionRepositoryMemory()
	}

	var cache repository.CacheRepository = repository.NewMockCache()
	if cfg.Cache == "redis" {
		cache = repository.NewRedisCache(redisClient)
	}

	metrics := observability.NewMetrics()

	engineOpts := []service.EngineOption{
		service.WithLegacyArrearsFallthrough(cfg.LegacyArrearsFallthrough),
	}
	if len(cfg.TraceMetrics) > 0 {
		engineOpts = append(engineOpts, service.WithTracer(service.NewLogrusTracer(log, cfg.TraceMetrics)))
	}

	sessions := service.NewSessionStore()
	workoutService := service.NewWorkoutService(sessions, optionRepo, log, metrics, engineOpts...)
	optionService := service.NewOptionService(sessions, optionRepo, log, cfg.MaxOptions)
	aiService := service.NewAIService(cfg.OpenAIAPIKey, log)
	suggestionService := service.NewSuggestionService(sessions, aiService, log, domain.SuggestionInput{
		RateMin:        cfg.SuggestRateMin,
		RateMax:        cfg.SuggestRateMax,
		AvailableTerms: cfg.SuggestTerms,
	})
	calculationService := service.NewCalculationService(cache, log, metrics, cfg.LegacyArrearsFallthrough)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(
		httpLayer.NewWorkoutHandler(workoutService, optionService, suggestionService, log),
		httpLayer.NewCalculationHandler(calculationService, log),
		rateLimiter,
		metrics,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"store":  cfg.OptionStore,
			"cache":  cfg.Cache,
			"legacy": cfg.LegacyArrearsFallthrough,
		}).Info("workout API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.WithError(err).Error("error starting server")
		return
	case <-quit:
		log.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("error during server shutdown")
	}

	log.WithField("open_sessions", sessions.Len()).Info("server exited")
}
