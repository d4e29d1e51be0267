package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/audit"
	"github.com/BruksfildServices01/practice-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/practice-scheduler/internal/db"
	"github.com/BruksfildServices01/practice-scheduler/internal/infra/archive"
	"github.com/BruksfildServices01/practice-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/practice-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/practice-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/practice-scheduler/internal/logging"
	"github.com/BruksfildServices01/practice-scheduler/internal/middleware"
	"github.com/BruksfildServices01/practice-scheduler/internal/routes"
	"github.com/BruksfildServices01/practice-scheduler/internal/validators"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORSMiddleware(cfg.CORS),
	)

	deps := routes.Dependencies{
		Config:   cfg,
		Stores:   stores,
		Registry: reg,
		Logger:   logger,
	}
	if cfg.Server.CheckEmailDomain {
		deps.EmailDomainCheck = validators.IsEmailDomainValid
	}

	svc, err := routes.RegisterRoutes(r, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register routes")
	}
	defer svc.Dispatcher.Close()

	if err := svc.Accounts.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap admin")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("driver", cfg.DB.Driver).
			Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}

func buildStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (routes.Stores, error) {
	var st routes.Stores

	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		sink := audit.NewLogSink(logger.With().Str("component", "audit").Logger())
		st.Users, st.Appointments, st.Intake = store, store, store
		st.AuditSink, st.AuditReader = sink, sink

	default:
		db, err := dbpkg.NewDB(cfg, logger)
		if err != nil {
			return st, err
		}
		auditLog := audit.New(db)
		st.Users = repository.NewUserGormRepository(db)
		st.Appointments = repository.NewAppointmentGormRepository(db, cfg.Schedule.BookingLockTimeout)
		st.Intake = repository.NewIntakeGormRepository(db)
		st.AuditSink, st.AuditReader = auditLog, auditLog
	}

	if cfg.Redis.URL != "" {
		client, err := cache.NewClient(cfg.Redis.URL)
		if err != nil {
			return st, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, availability cache disabled")
		} else {
			st.Cache = cache.NewAvailabilityRedisCache(client, cfg.Redis.AvailabilityTTL)
		}
	}

	if cfg.Archive.Bucket != "" {
		st.Archiver = archive.NewStore(archive.NewS3Client(cfg.Archive), cfg.Archive.Bucket, logger)
	}

	return st, nil
}
