package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/altrove/habitlens/internal/adapters/cache"
	adapterHTTP "github.com/altrove/habitlens/internal/adapters/handler/http"
	"github.com/altrove/habitlens/internal/adapters/repository"
	"github.com/altrove/habitlens/internal/config"
	"github.com/altrove/habitlens/internal/core/domain"
	"github.com/altrove/habitlens/internal/core/services"
	"github.com/altrove/habitlens/internal/core/workers"
)

func main() {
	startTime := time.Now()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	if cfg.Environment == "dev" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := connectDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("database connected")

	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// The cache and rate limiter are optional: every read falls
		// through to Postgres without Redis.
		logger.WithError(err).Warn("redis unavailable, running without cache")
		redisClient = nil
	}

	userRepo := repository.NewPostgresUserRepository(db.DB)
	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	if redisClient != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient, logger)
	}
	logRepo := repository.NewPostgresHabitLogRepository(db)
	screenRepo := repository.NewPostgresScreenTimeRepository(db)
	achieveRepo := repository.NewPostgresAchievementRepository(db)
	detoxRepo := repository.NewPostgresDetoxPlanRepository(db)
	limitRepo := repository.NewPostgresAppLimitRepository(db)
	twinRepo := repository.NewPostgresTwinRepository(db)

	worker := workers.NewStreakWorker(habitRepo, logRepo, logger)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.Start(workerCtx)
	defer stopWorker()

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	twinService := services.NewTwinService(twinRepo, rand.New(rand.NewSource(time.Now().UnixNano())))
	habitService := services.NewHabitService(habitRepo, logRepo, twinService, worker)
	achieveService := services.NewAchievementService(achieveRepo, habitRepo, logRepo, screenRepo, detoxRepo)
	logService := services.NewLogService(logRepo, habitRepo, twinService, worker, achieveService)
	screenService := services.NewScreenTimeService(screenRepo)
	wellbeingService := services.NewWellbeingService(screenRepo, detoxRepo, limitRepo)
	insightService := services.NewInsightService(habitRepo, logRepo, screenRepo, detoxRepo, limitRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:        adapterHTTP.NewAuthHandler(authService),
		HabitHandler:       adapterHTTP.NewHabitHandler(habitService, twinService),
		LogHandler:         adapterHTTP.NewLogHandler(logService),
		ScreenTimeHandler:  adapterHTTP.NewScreenTimeHandler(screenService),
		WellbeingHandler:   adapterHTTP.NewWellbeingHandler(wellbeingService),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achieveService),
		InsightsHandler:    adapterHTTP.NewInsightsHandler(insightService),
		TokenService:       tokenService,
		DB:                 db,
		Redis:              redisClient,
		StartTime:          startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("habitlens api running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("critical server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("stop signal received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("forced shutdown error")
	}

	logger.Info("server stopped gracefully")
}

// connectDB retries with exponential backoff so the API survives a
// database that comes up a few seconds later in compose environments.
func connectDB(cfg *config.Config, logger *logrus.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB

	b := backoff.NewExponentialBackOff()
	operation := func() error {
		var err error
		db, err = sqlx.Connect("pgx", cfg.DSN())
		if err != nil {
			logger.WithError(err).Warn("database connection failed, retrying")
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(b, 5)); err != nil {
		return nil, err
	}

	return db, nil
}
