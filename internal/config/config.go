// Package config loads and validates environment variables at startup.
// Fail-fast: malformed values or a storage backend without its URL abort
// the process before anything is wired.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration for the dashboard service.
type Config struct {
	Port        string
	GRPCPort    string // empty disables the gRPC health server
	CORSOrigins []string

	UseLocal     bool
	FixturePath  string
	BaseURL      string
	APIKey       string
	Query        string
	Country      string
	NumPages     int
	DatePosted   string
	ExcludeTerms []string
	Sections     []string

	StorageBackend string
	RedisURL       string
	DatabaseURL    string
	EventsRedisURL string

	RefreshIntervalHours int // 0 disables the refresh cron

	LogLevel       string
	LogDevelopment bool
}

// Load reads .env (when present) and the process environment and returns a
// validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	useLocal, err := boolVar(getenv, "JOBS_USE_LOCAL", true)
	if err != nil {
		return nil, err
	}

	numPages, err := intVar(getenv, "JOBS_NUM_PAGES", 1)
	if err != nil {
		return nil, err
	}
	if numPages < 1 {
		return nil, fmt.Errorf("JOBS_NUM_PAGES must be a positive integer, got %d", numPages)
	}

	interval, err := intVar(getenv, "CACHE_REFRESH_HOURS", 0)
	if err != nil {
		return nil, err
	}
	if interval < 0 {
		return nil, fmt.Errorf("CACHE_REFRESH_HOURS must not be negative, got %d", interval)
	}

	logDev, err := boolVar(getenv, "LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(stringVar(getenv, "STORAGE_BACKEND", BackendMemory))
	redisURL := getenv("REDIS_URL")
	dbURL := getenv("DATABASE_URL")
	switch backend {
	case BackendMemory:
	case BackendRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case BackendPostgres:
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of memory, redis, postgres, got %q", backend)
	}

	return &Config{
		Port:                 stringVar(getenv, "DASHBOARD_PORT", "8083"),
		GRPCPort:             getenv("GRPC_PORT"),
		CORSOrigins:          listVar(getenv, "CORS_ORIGINS", []string{"http://localhost:3000"}),
		UseLocal:             useLocal,
		FixturePath:          getenv("JOBS_FIXTURE_PATH"),
		BaseURL:              strings.TrimRight(getenv("JOBS_API_BASE_URL"), "/"),
		APIKey:               getenv("JSEARCH_API_KEY"),
		Query:                stringVar(getenv, "JOBS_QUERY", "software developer"),
		Country:              stringVar(getenv, "JOBS_COUNTRY", "us"),
		NumPages:             numPages,
		DatePosted:           stringVar(getenv, "JOBS_DATE_POSTED", "all"),
		ExcludeTerms:         listVar(getenv, "JOBS_EXCLUDE_TERMS", nil),
		Sections:             listVar(getenv, "JOBS_SECTIONS", []string{"indeed", "glassdoor", "linkedin"}),
		StorageBackend:       backend,
		RedisURL:             redisURL,
		DatabaseURL:          dbURL,
		EventsRedisURL:       getenv("EVENTS_REDIS_URL"),
		RefreshIntervalHours: interval,
		LogLevel:             stringVar(getenv, "LOG_LEVEL", "info"),
		LogDevelopment:       logDev,
	}, nil
}

func stringVar(getenv func(string) string, name, def string) string {
	if v := strings.TrimSpace(getenv(name)); v != "" {
		return v
	}
	return def
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	s := strings.TrimSpace(getenv(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return v, nil
}

func boolVar(getenv func(string) string, name string, def bool) (bool, error) {
	s := strings.TrimSpace(getenv(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", name, s)
	}
	return v, nil
}

func listVar(getenv func(string) string, name string, def []string) []string {
	s := getenv(name)
	if strings.TrimSpace(s) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
