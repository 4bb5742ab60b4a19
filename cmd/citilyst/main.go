package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/GenQServe/citilyst-backend/internal/app"
	"github.com/GenQServe/citilyst-backend/internal/auth"
	"github.com/GenQServe/citilyst-backend/internal/districts"
	"github.com/GenQServe/citilyst-backend/internal/feedback"
	"github.com/GenQServe/citilyst-backend/internal/platform/cache"
	"github.com/GenQServe/citilyst-backend/internal/platform/db"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
	"github.com/GenQServe/citilyst-backend/internal/reports"
	"github.com/GenQServe/citilyst-backend/internal/storage"
	"github.com/GenQServe/citilyst-backend/internal/token"
	"github.com/GenQServe/citilyst-backend/internal/users"
	"github.com/GenQServe/citilyst-backend/internal/villages"
	"github.com/GenQServe/citilyst-backend/jobs"
	"github.com/GenQServe/citilyst-backend/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis backs OTP codes and OAuth state, the server cannot run without it.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}

	mailQueue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailQueue.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)

	gate := rbac.NewGate(codec, logger)
	checker := rbac.NewChecker(userRepo, codec, logger)

	authStore := auth.NewStore(redisClient, cfg.OTPTTL)
	google := auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	authService := auth.NewService(userRepo, codec, authStore, google, mailQueue, cfg.FrontendURL, logger)
	authHandler := auth.NewHandler(logger, authService, cfg.IsProduction())

	districtRepo := districts.NewRepository(dbpool)
	districtService := districts.NewService(districtRepo)
	districtHandler := districts.NewHandler(logger, districtService, checker)

	villageRepo := villages.NewRepository(dbpool)
	villageService := villages.NewService(villageRepo, districtRepo)
	villageHandler := villages.NewHandler(logger, villageService, checker)

	uploader := storage.NewClient(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		// Document rendering is best effort, reports are still accepted without it.
		logger.Warn("gotenberg unreachable", slog.Any("error", err))
	}

	reportRepo := reports.NewRepository(dbpool)
	reportService := reports.NewService(reportRepo, userRepo, districtRepo, villageRepo, uploader, pdfClient, mailQueue, logger)
	reportHandler := reports.NewHandler(logger, reportService, checker)

	userHandler := users.NewHandler(logger, userService, checker)

	feedbackRepo := feedback.NewRepository(dbpool)
	feedbackHandler := feedback.NewHandler(logger, feedbackRepo, checker)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Gate:             gate,
		AuthHandler:      authHandler,
		UsersHandler:     userHandler,
		ReportsHandler:   reportHandler,
		DistrictsHandler: districtHandler,
		VillagesHandler:  villageHandler,
		FeedbackHandler:  feedbackHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
