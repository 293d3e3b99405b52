package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"sec_insights/pkg/api/server"
	"sec_insights/pkg/config"
	"sec_insights/pkg/core/cache"
	"sec_insights/pkg/core/ingest"
	"sec_insights/pkg/core/logging"
	"sec_insights/pkg/core/metrics"
	"sec_insights/pkg/core/store"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logger, closer, err := logging.Setup(cfg.Logging, *verbose)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}
	defer closer.Close()

	if err := cfg.EnsureDirs(); err != nil {
		logger.WithError(err).Fatal("Failed to create directories")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ch := cache.New(cfg.Cache.Dir, cache.WithMetrics(m), cache.WithLogger(logger))
	client := ingest.NewClientFromConfig(cfg.SEC, ch, ingest.WithMetrics(m), ingest.WithLogger(logger))

	opts := []server.Option{
		server.WithCache(ch),
		server.WithGatherer(reg),
		server.WithLogger(logger),
	}

	// The database is optional; without it statements are served but not saved.
	if cfg.Database.URL != "" {
		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer store.Close()
		if err := store.Migrate(ctx, store.GetPool()); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
		opts = append(opts, server.WithStore(store.NewRepository(store.GetPool())))
		logger.Info("Database connected")
	} else {
		logger.Warn("DATABASE_URL not set, statement snapshots disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(client, opts...).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithField("addr", cfg.Server.Addr).Info("API server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Server failed to start")
	}
	logger.Info("Server stopped")
}
