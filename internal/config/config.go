package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"periodic-table-service/internal/domain"
)

type Config struct {
	Server struct {
		Port     string `yaml:"port" env:"PORT"`
		Document string `yaml:"document" env:"DOCUMENT_PATH"` // optional override of the embedded document
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		FeedbackDelay     string `yaml:"feedback_delay" env:"QUIZ_FEEDBACK_DELAY"`
		ResetConfirmation string `yaml:"reset_confirmation" env:"QUIZ_RESET_CONFIRMATION"`
	} `yaml:"quiz"`
	Labels domain.Labels `yaml:"labels"`
	Worker struct {
		Port         string   `yaml:"port" env:"WORKER_PORT"`
		Upstream     string   `yaml:"upstream" env:"WORKER_UPSTREAM"`
		CacheVersion string   `yaml:"cache_version" env:"WORKER_CACHE_VERSION"`
		Manifest     []string `yaml:"manifest" env:"WORKER_MANIFEST" envSeparator:","`
		OfflinePath  string   `yaml:"offline_path" env:"WORKER_OFFLINE_PATH"`
		FetchTimeout string   `yaml:"fetch_timeout" env:"WORKER_FETCH_TIMEOUT"`
		WriteTimeout string   `yaml:"write_timeout" env:"WORKER_WRITE_TIMEOUT"`
	} `yaml:"worker"`
	Log struct {
		Env string `yaml:"env" env:"APP_ENV"`
	} `yaml:"log"`
}

// DefaultCacheVersion names the asset cache when none is configured.
const DefaultCacheVersion = "periodic-table-cache-v1"

// DefaultManifest lists the offline-capable resources cached at install.
func DefaultManifest() []string {
	return []string{
		"/",
		"/index.html",
		"/styles.css",
		"/script.js",
		"/manifest.json",
		"/icons/icon-192.png",
		"/icons/icon-512.png",
	}
}

// Load reads YAML config from path, then applies a .env file and environment
// variables on top. A missing config file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Worker.CacheVersion == "" {
		cfg.Worker.CacheVersion = DefaultCacheVersion
	}
	if len(cfg.Worker.Manifest) == 0 {
		cfg.Worker.Manifest = DefaultManifest()
	}
	if cfg.Worker.OfflinePath == "" {
		cfg.Worker.OfflinePath = "/index.html"
	}
	cfg.Labels = cfg.Labels.WithDefaults()
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
