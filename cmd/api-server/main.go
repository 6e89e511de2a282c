package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/healsync/healsync-backend/internal/api"
	"github.com/healsync/healsync-backend/internal/appointment"
	"github.com/healsync/healsync-backend/internal/config"
	"github.com/healsync/healsync-backend/internal/db"
	"github.com/healsync/healsync-backend/internal/directory"
	"github.com/healsync/healsync-backend/internal/logging"
	"github.com/healsync/healsync-backend/internal/notify"
	"github.com/healsync/healsync-backend/internal/prescription"
	redisclient "github.com/healsync/healsync-backend/internal/redis"
	"github.com/healsync/healsync-backend/internal/report"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("dev", "info", "api-server")
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, cfg.LogLevel, "api-server")
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	var notifier notify.Notifier
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		logger.Info().Str("smtp_addr", cfg.SMTPAddr).Msg("mail delivery enabled")
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	dir := directory.NewPgDirectory(pgPool)
	apptRepo := appointment.NewPgRepository(pgPool)
	locker := redisclient.NewRedisDoctorLocker(rdb, cfg.LockTTL)

	scheduler := appointment.NewScheduler(apptRepo, dir, locker, notifier, logger)
	lifecycle := appointment.NewLifecycle(apptRepo, dir, notifier, logger)
	reports := report.NewService(report.NewPgRepository(pgPool), dir, notifier, logger)
	prescriptions := prescription.NewService(prescription.NewPgRepository(pgPool), dir, notifier, logger)

	router := api.NewRouter(api.RouterConfig{
		Scheduler:     scheduler,
		Lifecycle:     lifecycle,
		Reports:       reports,
		Prescriptions: prescriptions,
		PgPool:        pgPool,
		Redis:         rdb,
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("api-server stopped")
}
