// Package config reads recipebook settings from the environment and
// optional .env files. Command-line flags override what it returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/recipebook/internal/api"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/state"
)

// Environment variable names.
const (
	EnvAPIURL         = "RECIPEBOOK_API_URL"
	EnvAPIKey         = "RECIPEBOOK_API_KEY"
	EnvTimeout        = "RECIPEBOOK_TIMEOUT"
	EnvStore          = "RECIPEBOOK_STORE"
	EnvStorePath      = "RECIPEBOOK_STORE_PATH"
	EnvAddr           = "RECIPEBOOK_ADDR"
	EnvResultsPerPage = "RECIPEBOOK_RESULTS_PER_PAGE"
	EnvLogLevel       = "RECIPEBOOK_LOG_LEVEL"
)

// Storage backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds every runtime setting.
type Config struct {
	APIURL         string
	APIKey         string
	Timeout        time.Duration
	Store          string
	StorePath      string
	Addr           string
	ResultsPerPage int
	LogLevel       logger.Level
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:         api.DefaultBaseURL,
		Timeout:        api.DefaultTimeout,
		Store:          StoreSQLite,
		StorePath:      ".recipebook/recipebook.db",
		Addr:           ":8080",
		ResultsPerPage: state.DefaultResultsPerPage,
		LogLevel:       logger.LevelNormal,
	}
}

// Load reads the given .env files (".env" when none are named), then the
// process environment. Process variables win over file values and
// missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	fromFiles := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := fromFiles[k]; !ok {
				fromFiles[k] = v
			}
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fromFiles[key]
		return v, ok
	})
}

// FromLookup builds a config from lookup, falling back to Default for
// unset keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := get(EnvAPIKey); ok {
		cfg.APIKey = v
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get(EnvStore); ok {
		cfg.Store = strings.ToLower(v)
	}
	if v, ok := get(EnvStorePath); ok {
		cfg.StorePath = v
	}
	if v, ok := get(EnvAddr); ok {
		cfg.Addr = v
	}
	if v, ok := get(EnvResultsPerPage); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: %s: want a positive number, got %q", EnvResultsPerPage, v)
		}
		cfg.ResultsPerPage = n
	}
	if v, ok := get(EnvLogLevel); ok {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, cfg.Validate()
}

// Validate checks values that flags may also have set.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown store %q (want memory, file or sqlite)", c.Store)
	}
	if c.Store != StoreMemory && c.StorePath == "" {
		return fmt.Errorf("config: store %s needs a path", c.Store)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// parseDuration accepts Go durations ("10s") or bare seconds ("10").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
