package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}

	if cfg.AI.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.AI.LLM.Provider)
	}

	if cfg.Analysis.DefaultMode != "hybrid" {
		t.Errorf("expected default mode 'hybrid', got %q", cfg.Analysis.DefaultMode)
	}

	if cfg.Ensemble.ML.Embedding != 2.0 || cfg.Ensemble.ML.Sentiment != 1.0 || cfg.Ensemble.ML.BoW != 0.8 {
		t.Errorf("unexpected ML weights %+v", cfg.Ensemble.ML)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
ai:
  llm:
    provider: ollama
    model: llama3
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.AI.LLM.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.AI.LLM.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.AI.LLM.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.AI.LLM.OllamaURL)
	}
	if cfg.Video.MaxFrames != 50 {
		t.Errorf("expected default max_frames 50, got %d", cfg.Video.MaxFrames)
	}
	if cfg.Ensemble.Hybrid.AI != 0.5 {
		t.Errorf("expected default hybrid AI weight 0.5, got %v", cfg.Ensemble.Hybrid.AI)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown mode", "analysis:\n  default_mode: magic\n"},
		{"bad provider", "ai:\n  llm:\n    provider: claude\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"too few frames", "video:\n  max_frames: 1\n"},
		{"feed without url", "sources:\n  feeds:\n    - name: nothing\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid config") {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("VERITAS_PORT", "9100")
	t.Setenv("VERITAS_DEFAULT_MODE", "ml_only")
	t.Setenv("VERITAS_REDIS_ADDR", "cache:6379")
	t.Setenv("VERITAS_DATA_DIR", dir)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.DefaultMode != "ml_only" {
		t.Errorf("expected mode ml_only, got %q", cfg.Analysis.DefaultMode)
	}
	if cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("expected redis addr override, got %q", cfg.Cache.RedisAddr)
	}
	if cfg.GetDataDir() != dir {
		t.Errorf("expected data dir %q, got %q", dir, cfg.GetDataDir())
	}
}

func TestLoadEnvOverrideInvalidMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("VERITAS_DEFAULT_MODE", "psychic")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid mode override")
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
