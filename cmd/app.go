package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jobmate/dashboard-service/internal/config"
	"jobmate/dashboard-service/internal/db"
	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/fetch"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/metrics"
	"jobmate/dashboard-service/internal/provider"
	"jobmate/dashboard-service/internal/scraper"
)

// app is the wired service shared by every command.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	res       *db.Resources
	registry  *prometheus.Registry
	jobs      *provider.Provider
	favorites *favorites.Store
}

// newApp loads config and connects storage. CLI commands log to stderr so
// their tables own stdout.
func newApp(ctx context.Context, cli bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
		Stderr:      cli,
	})
	if err != nil {
		return nil, err
	}

	res, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := provider.OptionsFromConfig(cfg)
	fetcher, err := scraper.NewFetcher(opts.FetchConfig(), fetch.DefaultClient)
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("fetcher: %w", err)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		res:       res,
		registry:  reg,
		jobs:      provider.New(opts, fetcher, res.Backend, log.With(logger.String("component", "provider")), m),
		favorites: favorites.NewStore(res.Backend, res.Events, log.With(logger.String("component", "favorites")), m),
	}, nil
}

func (a *app) Close() {
	a.res.Close()
	_ = a.log.Sync()
}
