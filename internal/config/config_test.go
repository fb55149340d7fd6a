package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, c Config)
		wantErr string
	}{
		{
			name: "defaults",
			env:  nil,
			check: func(t *testing.T, c Config) {
				if c != Default() {
					t.Fatalf("expected defaults, got %+v", c)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				EnvAPIKey:         "abc",
				EnvTimeout:        "3",
				EnvStore:          "FILE",
				EnvStorePath:      "data/bookmarks.json",
				EnvResultsPerPage: "5",
				EnvLogLevel:       "debug",
			},
			check: func(t *testing.T, c Config) {
				if c.APIKey != "abc" || c.Timeout != 3*time.Second || c.Store != StoreFile ||
					c.StorePath != "data/bookmarks.json" || c.ResultsPerPage != 5 || c.LogLevel != logger.LevelVerbose {
					t.Fatalf("unexpected config %+v", c)
				}
			},
		},
		{
			name: "go duration",
			env:  map[string]string{EnvTimeout: "1500ms"},
			check: func(t *testing.T, c Config) {
				if c.Timeout != 1500*time.Millisecond {
					t.Fatalf("timeout = %s", c.Timeout)
				}
			},
		},
		{name: "bad store", env: map[string]string{EnvStore: "redis"}, wantErr: "unknown store"},
		{name: "bad timeout", env: map[string]string{EnvTimeout: "soon"}, wantErr: EnvTimeout},
		{name: "bad page size", env: map[string]string{EnvResultsPerPage: "0"}, wantErr: EnvResultsPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromLookup(lookupFrom(tt.env))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "RECIPEBOOK_TEST_ONLY=1\n" + EnvStore + "=memory\n" + EnvAddr + "=127.0.0.1:9999\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvAddr, ":7000")

	c, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Store != StoreMemory {
		t.Fatalf("store = %q, want memory from file", c.Store)
	}
	if c.Addr != ":7000" {
		t.Fatalf("addr = %q, process env must win", c.Addr)
	}
}
