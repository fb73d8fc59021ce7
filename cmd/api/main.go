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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-consistency-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/config"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/workers"
)

type app struct {
	router    *gin.Engine
	worker    *workers.RecomputeWorker
	analytics *services.AnalyticsService
	tokens    *services.TokenService

	habitRepo  domain.HabitRepository
	userRepo   domain.UserRepository
	recordRepo domain.RecordRepository
	metricRepo domain.MetricRepository

	db  *sqlx.DB
	rdb *redis.Client
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if lvl > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func connectDB(ctx context.Context, cfg config.DB) (*sqlx.DB, error) {
	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("connecting to database")

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Msg("database connected")
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := connectDB(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.habitRepo = repository.NewPostgresHabitRepository(db)
		a.userRepo = repository.NewPostgresUserRepository(db)
		a.recordRepo = repository.NewPostgresRecordRepository(db)
		a.metricRepo = repository.NewPostgresMetricRepository(db)
	default:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		a.habitRepo = repository.NewInMemoryHabitRepository()
		a.userRepo = repository.NewInMemoryUserRepository()
		a.recordRepo = repository.NewInMemoryRecordRepository()
		a.metricRepo = repository.NewInMemoryMetricRepository()
	}

	var habitCache services.HabitCache
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb

		cached := repository.NewCachedHabitRepository(a.habitRepo, rdb)
		a.habitRepo = cached
		habitCache = cached
	}

	engine := analytics.NewEngine(cfg.AnalyticsConfig())
	a.analytics = services.NewAnalyticsService(engine, a.habitRepo, a.recordRepo, a.userRepo, a.metricRepo)
	a.worker = workers.NewRecomputeWorker(a.analytics)
	recordSvc := services.NewRecordService(a.recordRepo, a.habitRepo, a.worker, habitCache)
	a.tokens = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, a.userRepo)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(a.analytics, recordSvc),
		RecordsHandler:   adapterHTTP.NewRecordsHandler(recordSvc),
		TokenValidator:   a.tokens,
		DB:               a.db,
		Redis:            a.rdb,
		RateLimit:        cfg.RateLimit,
		StartTime:        time.Now(),
	})

	return a, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	a.worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", string(cfg.Storage)).Msg("kanso consistency engine running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped gracefully")
}
