package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"jobmate/dashboard-service/fixtures"
	"jobmate/dashboard-service/internal/fetch"
)

const (
	// SearchBaseURL is the public job search endpoint.
	SearchBaseURL = "https://jsearch.p.rapidapi.com"
	searchHost    = "jsearch.p.rapidapi.com"
)

// ErrMissingConfiguration is returned when a fetch needs the API key and
// none is configured. It is fatal for that fetch attempt only.
var ErrMissingConfiguration = errors.New("JSEARCH_API_KEY is required for remote job search")

// Mode selects where jobs come from.
type Mode string

const (
	ModeLocal   Mode = "local"
	ModeBackend Mode = "backend"
	ModeSearch  Mode = "search"
)

// Fetcher retrieves one raw job payload.
type Fetcher interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// Query holds the parameters that shape a remote search.
type Query struct {
	Text       string
	Country    string
	NumPages   int
	DatePosted string
}

// Values encodes q as the upstream query string. page is always 1.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("query", q.Text)
	v.Set("page", "1")
	v.Set("num_pages", strconv.Itoa(max(q.NumPages, 1)))
	if q.Country != "" {
		v.Set("country", q.Country)
	}
	if q.DatePosted != "" {
		v.Set("date_posted", q.DatePosted)
	}
	return v
}

// FetchConfig describes a Fetcher.
type FetchConfig struct {
	Mode        Mode
	FixturePath string
	BaseURL     string
	SearchURL   string // overrides SearchBaseURL, mostly for tests
	APIKey      string
	Query       Query
}

// NewFetcher returns the Fetcher for cfg.Mode.
func NewFetcher(cfg FetchConfig, doer fetch.Doer) (Fetcher, error) {
	switch cfg.Mode {
	case ModeLocal:
		return &FixtureFetcher{Path: cfg.FixturePath}, nil
	case ModeBackend:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("backend mode needs a base URL")
		}
		return &BackendFetcher{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Query: cfg.Query, client: doer}, nil
	case ModeSearch:
		base := cfg.SearchURL
		if base == "" {
			base = SearchBaseURL
		}
		return &SearchFetcher{BaseURL: base, APIKey: cfg.APIKey, Query: cfg.Query, client: doer}, nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", cfg.Mode)
	}
}

// FixtureFetcher reads a static JSON fixture. With an empty Path it serves
// the fixture embedded in the binary.
type FixtureFetcher struct {
	Path string
}

func (f *FixtureFetcher) Fetch(_ context.Context) (json.RawMessage, error) {
	if f.Path == "" {
		return json.RawMessage(fixtures.Jobs), nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", f.Path, err)
	}
	if !json.Valid(data) {
		return nil, &fetch.Error{Kind: fetch.KindInvalidJSON, URL: f.Path}
	}
	return json.RawMessage(data), nil
}

// BackendFetcher calls a custom backend's /jobs endpoint.
type BackendFetcher struct {
	BaseURL string
	APIKey  string
	Query   Query
	client  fetch.Doer
}

func (f *BackendFetcher) Fetch(ctx context.Context) (json.RawMessage, error) {
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/jobs?" + f.Query.Values().Encode()

	var headers map[string]string
	if f.APIKey != "" {
		headers = map[string]string{"X-API-Key": f.APIKey}
	}
	body, err := fetch.Get(ctx, f.client, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("backend fetch: %w", err)
	}
	return body, nil
}

// SearchFetcher queries the public job search API.
type SearchFetcher struct {
	BaseURL string
	APIKey  string
	Query   Query
	client  fetch.Doer
}

func (f *SearchFetcher) Fetch(ctx context.Context) (json.RawMessage, error) {
	if f.APIKey == "" {
		return nil, ErrMissingConfiguration
	}

	endpoint := strings.TrimRight(f.BaseURL, "/") + "/search?" + f.Query.Values().Encode()
	body, err := fetch.Get(ctx, f.client, endpoint, map[string]string{
		"X-RapidAPI-Key":  f.APIKey,
		"X-RapidAPI-Host": searchHost,
	})
	if err != nil {
		return nil, fmt.Errorf("job search: %w", err)
	}
	return body, nil
}
