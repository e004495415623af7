package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mathtutor "github.com/mindan-edu/mathtutor"
	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/handler"
	"github.com/mindan-edu/mathtutor/internal/repository"
	"github.com/mindan-edu/mathtutor/internal/service"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(mathtutor.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)

	// Seed the exam-question catalog
	if err := questionRepo.Seed(ctx); err != nil {
		slog.Error("failed to seed exam questions", "error", err)
		os.Exit(1)
	}

	// Initialize services; OCR degrades to sentinel text when unavailable
	authService := service.NewAuthService(userRepo, cfg.SecretKey, cfg.AccessTokenTTL())
	sessionService := service.NewSessionService(sessionRepo)
	catalogService := service.NewCatalogService(questionRepo)
	ocrService := service.NewOCRService(ctx)
	completionService := service.NewCompletionService(cfg.ProviderURL)
	tutorService := service.NewTutorService(sessionService, sessionRepo, ocrService, completionService)

	h := handler.New(handler.Deps{
		Cfg:            cfg,
		AuthService:    authService,
		TutorService:   tutorService,
		SessionService: sessionService,
		CatalogService: catalogService,
		OCRService:     ocrService,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: h.Router(),
	}

	go func() {
		slog.Info("AI 수학 튜터 서버 시작", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	slog.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
