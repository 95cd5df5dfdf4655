package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/auth"
	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/config"
	"github.com/intranet-suite/survey-service/internal/events"
	"github.com/intranet-suite/survey-service/internal/handlers"
	"github.com/intranet-suite/survey-service/internal/repositories/postgres"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
	"github.com/intranet-suite/survey-service/internal/validator"
	"github.com/intranet-suite/survey-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	logger.Info("starting survey service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"survey_duration", cfg.SurveyDuration.String())

	// Database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis backs both the catalog cache and the attempt countdown store
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, slogLogger)
	attemptStore := cache.NewRedisAttemptStore(redisClient)

	// Event publishing is optional; without brokers events are dropped
	var publisher events.EventPublisher = events.NopEventPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.EventTopic,
			Logger:       slogLogger,
		})
		if err != nil {
			logger.Warn("event publisher unavailable, continuing without events", "error", err)
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}

	// Repositories and services
	repo := postgres.NewRepository(db)
	v := validator.New()

	attemptService := services.NewAttemptService(repo, attemptStore, nil, publisher, slogLogger, cfg)
	surveyService := services.NewSurveyService(repo, cacheService, v, slogLogger)
	reportService := services.NewReportService(repo, slogLogger)
	documentService := services.NewDocumentService(repo, v, slogLogger)
	bulletinService := services.NewBulletinService(repo, publisher, v, slogLogger)

	// Token verification goes through Casdoor when configured, local decode
	// otherwise
	var verifier auth.Verifier = auth.LocalVerifier{}
	if cfg.CasdoorEnabled() {
		verifier = auth.NewCasdoorVerifier(cfg)
		logger.Info("casdoor token verification enabled", "endpoint", cfg.CasdoorEndpoint)
	}

	// HTTP layer
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		attemptService,
		surveyService,
		reportService,
		documentService,
		bulletinService,
		verifier,
		v,
		logger,
	)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
