// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolate points CONFIG_PATH at a missing file and moves to an empty dir so
// no stray config.yaml is picked up.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.ML.URL != "http://ml-service:8000" {
		t.Errorf("ML.URL = %q, want http://ml-service:8000", cfg.ML.URL)
	}
	if cfg.ML.Timeout != 5*time.Second {
		t.Errorf("ML.Timeout = %v, want 5s", cfg.ML.Timeout)
	}
	if cfg.Recommend.DefaultLimit != 20 {
		t.Errorf("Recommend.DefaultLimit = %d, want 20", cfg.Recommend.DefaultLimit)
	}
	if cfg.Recommend.SimilarLimit != 10 {
		t.Errorf("Recommend.SimilarLimit = %d, want 10", cfg.Recommend.SimilarLimit)
	}
	if got := strings.Join(cfg.Recommend.FallbackGenres, ","); got != "Action,Drama,Comedy" {
		t.Errorf("Recommend.FallbackGenres = %q", got)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
}

func TestLoadWithKoanf_RequiresJWTSecret(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ML_SERVICE_URL", "http://localhost:8001")
	t.Setenv("ML_TIMEOUT", "2s")
	t.Setenv("RECOMMEND_FALLBACK_GENRES", "Sci-Fi, Thriller")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.ML.URL != "http://localhost:8001" {
		t.Errorf("ML.URL = %q", cfg.ML.URL)
	}
	if cfg.ML.Timeout != 2*time.Second {
		t.Errorf("ML.Timeout = %v, want 2s", cfg.ML.Timeout)
	}
	if got := strings.Join(cfg.Recommend.FallbackGenres, "|"); got != "Sci-Fi|Thriller" {
		t.Errorf("FallbackGenres = %q, want Sci-Fi|Thriller", got)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
storage:
  backend: badger
  badger_path: /tmp/marquee-test
security:
  jwt_secret: ` + testSecret + `
recommend:
  default_limit: 15
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7100 {
		t.Errorf("env should override file: Server.Port = %d, want 7100", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Recommend.DefaultLimit != 15 {
		t.Errorf("Recommend.DefaultLimit = %d, want 15", cfg.Recommend.DefaultLimit)
	}
	if cfg.Recommend.SimilarLimit != 10 {
		t.Errorf("defaults should survive file load: SimilarLimit = %d", cfg.Recommend.SimilarLimit)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"ml_service_url", "ml.url"},
		{"NATS_URL", "events.nats_url"},
		{"MONGODB_URI", "storage.mongo_uri"},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	isolate(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	if err := os.WriteFile("config.yaml", []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}

	t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("missing CONFIG_PATH should fall through, got %q", got)
	}
}
