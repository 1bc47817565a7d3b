package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/background"
	"github.com/olholv/contactbook/internal/config"
	"github.com/olholv/contactbook/internal/database"
	"github.com/olholv/contactbook/internal/handlers"
	middlewareCustom "github.com/olholv/contactbook/internal/middleware"
	"github.com/olholv/contactbook/internal/repositories"
	"github.com/olholv/contactbook/internal/routes"
	"github.com/olholv/contactbook/internal/services"
	"github.com/olholv/contactbook/internal/storage"
)

const (
	migrationsDir = "migrations"

	contactCreateLimit  = 5
	contactCreateWindow = 60 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx, migrationsDir); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Redis backs the per-user contact creation limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Object storage for avatars
	objectStore, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize object storage", slog.Any("error", err))
		os.Exit(1)
	}

	bucketCtx, bucketCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := objectStore.EnsureBucket(bucketCtx); err != nil {
		bucketCancel()
		logger.Error("failed to ensure storage bucket", slog.Any("error", err))
		os.Exit(1)
	}
	bucketCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// Cleanup manager purges expired password reset tokens
	cleanupManager := background.NewCleanupManager(resetRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	// AWS SES email service behind an async queue
	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.BaseURL,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	mailer := background.NewMailer(emailService, cfg.Email.QueueSize, logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenManager, mailer, logger)
	contactService := services.NewContactService(contactRepo, logger)
	resetService := services.NewPasswordResetService(resetRepo, userRepo, db, mailer, cfg.Auth.ResetTokenExpiry, logger)
	avatarService := services.NewAvatarService(objectStore, userRepo, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)
	resetHandler := handlers.NewPasswordResetHandler(resetService)
	avatarHandler := handlers.NewAvatarHandler(avatarService)

	contactCreateLimiter := middlewareCustom.NewUserRateLimiter(
		redisClient,
		"ratelimit:contact-create",
		contactCreateLimit,
		contactCreateWindow,
		logger,
	)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, contactHandler, resetHandler, avatarHandler, tokenManager, userRepo, contactCreateLimiter)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go mailer.Start(workerCtx)
	go cleanupManager.Start(workerCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	workerCancel()
	cleanupManager.Stop()
	mailer.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
