// Package provider serves the dashboard's job list. It picks the data
// source, derives the cache key and looks jobs up in memory, then in
// persistent storage, then upstream, coalescing concurrent fetches.
package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jobmate/dashboard-service/internal/config"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/metrics"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/scraper"
	"jobmate/dashboard-service/internal/storage"
)

const (
	// CacheVersion is bumped whenever the stored Job shape changes.
	CacheVersion   = "v2"
	cacheKeyPrefix = "jobs:data"
	embeddedPath   = "embedded"
)

// Options configures one Provider.
type Options struct {
	Mode         scraper.Mode
	FixturePath  string
	BaseURL      string
	APIKey       string
	Query        scraper.Query
	ExcludeTerms []string
	// Version overrides CacheVersion.
	Version string
}

// OptionsFromConfig maps the service configuration onto provider options.
// The local flag wins over a base URL; without either the public search
// API is used.
func OptionsFromConfig(cfg *config.Config) Options {
	mode := scraper.ModeSearch
	switch {
	case cfg.UseLocal:
		mode = scraper.ModeLocal
	case cfg.BaseURL != "":
		mode = scraper.ModeBackend
	}
	return Options{
		Mode:        mode,
		FixturePath: cfg.FixturePath,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Query: scraper.Query{
			Text:       cfg.Query,
			Country:    cfg.Country,
			NumPages:   cfg.NumPages,
			DatePosted: cfg.DatePosted,
		},
		ExcludeTerms: cfg.ExcludeTerms,
	}
}

// FetchConfig returns the fetcher configuration matching o.
func (o Options) FetchConfig() scraper.FetchConfig {
	return scraper.FetchConfig{
		Mode:        o.Mode,
		FixturePath: o.FixturePath,
		BaseURL:     o.BaseURL,
		APIKey:      o.APIKey,
		Query:       o.Query,
	}
}

// CacheKey derives the storage key for o. Every option that changes the
// fetched result is part of the key. Exclusion terms are not: storage keeps
// the unfiltered list and each provider filters it into its memory slot.
func CacheKey(o Options) string {
	version := o.Version
	if version == "" {
		version = CacheVersion
	}

	params := url.Values{}
	params.Set("query", strings.TrimSpace(o.Query.Text))
	params.Set("country", strings.TrimSpace(o.Query.Country))
	params.Set("date_posted", strings.TrimSpace(o.Query.DatePosted))
	params.Set("num_pages", strconv.Itoa(max(o.Query.NumPages, 1)))
	switch o.Mode {
	case scraper.ModeLocal:
		path := o.FixturePath
		if path == "" {
			path = embeddedPath
		}
		params.Set("fixture", path)
	case scraper.ModeBackend:
		params.Set("base_url", strings.TrimRight(o.BaseURL, "/"))
	}

	return fmt.Sprintf("%s:%s:%s?%s", cacheKeyPrefix, version, o.Mode, params.Encode())
}

// Provider owns one memory slot and one in-flight slot. Separate providers
// never share either; persistent storage is shared and last write wins.
type Provider struct {
	opts    Options
	key     string
	fetcher scraper.Fetcher
	cache   *storage.Collection[model.Job]
	log     logger.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	cached []model.Job

	inflight singleflight.Group
}

// New returns a Provider. backend, log and m may be nil.
func New(opts Options, fetcher scraper.Fetcher, backend storage.Backend, log logger.Logger, m *metrics.Metrics) *Provider {
	log = logger.OrNop(log)
	key := CacheKey(opts)
	return &Provider{
		opts:    opts,
		key:     key,
		fetcher: fetcher,
		cache:   storage.NewCollection[model.Job](backend, log),
		log:     log.With(logger.String("cache_key", key)),
		metrics: m,
	}
}

// CacheKey returns the key this provider reads and writes.
func (p *Provider) CacheKey() string { return p.key }

// Mode returns the configured data source.
func (p *Provider) Mode() scraper.Mode { return p.opts.Mode }

// GetAllJobs returns every job. Errors are logged and yield an empty list,
// so callers cannot tell "no jobs" from "failed".
func (p *Provider) GetAllJobs(ctx context.Context) []model.Job {
	jobs, err := p.Jobs(ctx)
	if err != nil {
		p.log.Error("Failed to load jobs", logger.Error(err))
		return []model.Job{}
	}
	return jobs
}

// GetData returns the jobs whose source, or any of whose sources, equals
// source. A blank source returns every job.
func (p *Provider) GetData(ctx context.Context, source string) []model.Job {
	return FilterBySource(p.GetAllJobs(ctx), source)
}

// FilterBySource keeps the jobs listed on source. A blank source keeps
// every job and returns jobs itself.
func FilterBySource(jobs []model.Job, source string) []model.Job {
	if strings.TrimSpace(source) == "" {
		return jobs
	}
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if scraper.MatchesSource(j, source) {
			out = append(out, j)
		}
	}
	return out
}

// Jobs runs the same lookup as GetAllJobs but returns the error. Exclusion
// terms are already applied, so concurrent callers share one list.
func (p *Provider) Jobs(ctx context.Context) ([]model.Job, error) {
	return p.lookup(ctx)
}

// Clear drops the memory and storage entries for this provider's key.
func (p *Provider) Clear(ctx context.Context) {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
	p.cache.Clear(ctx, p.key)
	p.metrics.CacheCleared()
}

// Refresh clears the cache and fetches again.
func (p *Provider) Refresh(ctx context.Context) ([]model.Job, error) {
	p.Clear(ctx)
	return p.Jobs(ctx)
}

// FindJob returns the job with the given id.
func (p *Provider) FindJob(ctx context.Context, id string) (model.Job, bool) {
	for _, j := range p.GetAllJobs(ctx) {
		if j.ID == id {
			return j, true
		}
	}
	return model.Job{}, false
}

func (p *Provider) lookup(ctx context.Context) ([]model.Job, error) {
	if jobs, ok := p.memory(); ok {
		p.metrics.CacheHit(metrics.TierMemory)
		return jobs, nil
	}

	if stored := p.cache.Read(ctx, p.key); len(stored) > 0 {
		jobs := p.remember(stored)
		p.metrics.CacheHit(metrics.TierStorage)
		p.log.Debug("Jobs loaded from storage", logger.Int("count", len(stored)))
		return jobs, nil
	}

	// The fetch outlives any single caller: others may be waiting on it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := p.inflight.Do(p.key, func() (any, error) {
		// A caller that missed the previous flight finds its result here.
		if jobs, ok := p.memory(); ok {
			return jobs, nil
		}
		return p.load(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Job), nil
}

func (p *Provider) load(ctx context.Context) ([]model.Job, error) {
	start := time.Now()
	jobs, err := p.fetchAndDecode(ctx)
	p.metrics.FetchDone(string(p.opts.Mode), time.Since(start), len(jobs), err)
	if err != nil {
		return nil, fmt.Errorf("load %s jobs: %w", p.opts.Mode, err)
	}

	kept := p.remember(jobs)
	p.cache.Write(ctx, p.key, jobs)
	p.log.Info("Jobs fetched",
		logger.String("mode", string(p.opts.Mode)),
		logger.Int("count", len(jobs)),
		logger.Int("excluded", len(jobs)-len(kept)),
		logger.Duration("took", time.Since(start)),
	)
	return kept, nil
}

func (p *Provider) fetchAndDecode(ctx context.Context) ([]model.Job, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	raw, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return scraper.Decode(raw)
}

func (p *Provider) memory() ([]model.Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached, p.cached != nil
}

// remember applies the exclusion terms and stores the result in the
// memory slot. The returned list is the one every later caller sees.
func (p *Provider) remember(jobs []model.Job) []model.Job {
	kept := scraper.WithoutRedFlags(jobs, p.opts.ExcludeTerms)
	if kept == nil {
		kept = []model.Job{}
	}
	p.mu.Lock()
	p.cached = kept
	p.mu.Unlock()
	return kept
}
