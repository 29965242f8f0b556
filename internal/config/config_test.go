package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`server:
  port: "9000"
quiz:
  feedback_delay: "2s"
labels:
  start_quiz: "Quiz starten"
worker:
  upstream: "http://origin:8080"
  manifest: ["/", "/index.html"]
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("WORKER_CACHE_VERSION", "periodic-table-cache-v9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Fatalf("expected env to override port, got %q", cfg.Server.Port)
	}
	if cfg.Worker.CacheVersion != "periodic-table-cache-v9" {
		t.Fatalf("unexpected cache version %q", cfg.Worker.CacheVersion)
	}
	if len(cfg.Worker.Manifest) != 2 {
		t.Fatalf("expected yaml manifest kept, got %v", cfg.Worker.Manifest)
	}
	if cfg.Labels.StartQuiz != "Quiz starten" || cfg.Labels.EndQuiz != "End quiz" {
		t.Fatalf("expected custom label with defaults, got %+v", cfg.Labels)
	}
	if Duration(cfg.Quiz.FeedbackDelay, time.Second) != 2*time.Second {
		t.Fatalf("unexpected feedback delay %q", cfg.Quiz.FeedbackDelay)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Worker.CacheVersion != DefaultCacheVersion {
		t.Fatalf("expected default cache version, got %q", cfg.Worker.CacheVersion)
	}
	if len(cfg.Worker.Manifest) != len(DefaultManifest()) {
		t.Fatalf("expected default manifest, got %v", cfg.Worker.Manifest)
	}
	if cfg.Worker.OfflinePath != "/index.html" {
		t.Fatalf("expected default offline path, got %q", cfg.Worker.OfflinePath)
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := Duration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for invalid value, got %v", got)
	}
	if got := Duration("250ms", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
}
