package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/config"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/bootstrap"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/logging"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/maintenance"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/service"
)

const serviceName = "cramerton-tracker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	bucket, closeBucket, err := bootstrap.OpenBucket(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeBucket()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st := bootstrap.NewStore(bucket, cfg.Store, logger, reg)
	svc := service.NewProjectService(st, logger.Named("service"))

	purge := maintenance.NewScheduler(st, maintenance.Options{
		Schedule:  cfg.Store.PurgeSchedule,
		Retention: cfg.Store.TombstoneRetention,
		Logger:    logger,
	})
	if err := purge.Start(); err != nil {
		return err
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Backend:     cfg.Storage.Backend,
		FrontendURL: cfg.Server.FrontendURL,
		SecretKey:   cfg.Auth.SecretKey,
		APIKey:      cfg.Auth.APIKey,
		ReadRate:    cfg.Server.ReadRatePerMinute,
		WriteRate:   cfg.Server.WriteRatePerMinute,
		Service:     svc,
		Store:       st,
		Projects:    st,
		Purger:      purge,
		Gatherer:    reg,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("backend", cfg.Storage.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	purge.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
