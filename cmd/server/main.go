package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	if err := cfg.Grading.Validate(); err != nil {
		logger.Warn("Grading configuration incomplete", "error", err)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pkg.CloseDatabase(db)

	if err := pkg.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		feed         repositories.ChangeFeed
		cacheService cache.CacheService
		redisClient  *redis.Client
	)
	redisClient, err = pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache and change feed", "error", err)
		feed = repositories.NewMemoryNotifier()
		cacheService = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		feed = repositories.NewRedisChangeFeed(redisClient, slogger)
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	repo := postgres.NewRepository(db, feed, slogger)

	proxy := grading.NewProxy(
		grading.NewGeminiClient(cfg.Grading.BaseURL, cfg.Grading.APIKey, cfg.Grading.Timeout),
		cfg.Grading.ProxyEnabled(),
		cfg.Grading.Models,
		slogger,
	)
	var grader grading.Service = proxy
	if cfg.Grading.ProxyURL != "" {
		grader = grading.NewHTTPClient(cfg.Grading.ProxyURL, cfg.Grading.Timeout, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:           repo,
		Cache:          cacheService,
		Grader:         grader,
		Publisher:      publisher,
		Validator:      validator.New(),
		GradingTimeout: cfg.Grading.Timeout,
		Logger:         slogger,
	})

	if err := serviceManager.Identity().SeedTeacherEmails(ctx, cfg.BootstrapTeacherEmails); err != nil {
		log.Fatalf("Failed to seed teacher emails: %v", err)
	}

	var auth handlers.Authenticator
	switch {
	case cfg.Casdoor.Enabled():
		auth = handlers.NewCasdoorAuthenticator(handlers.NewCasdoorClient(cfg.Casdoor))
	case cfg.IsProduction():
		log.Fatal("CASDOOR_ENDPOINT and CASDOOR_CERTIFICATE are required in production")
	default:
		logger.Warn("Casdoor not configured, trusting identity headers")
		auth = handlers.HeaderAuthenticator{}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, proxy, feed, repo.Submission(), auth, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Quiz service starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down quiz service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", "error", err)
	}
}
