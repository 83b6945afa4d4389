package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("NOTEGROUND_CONFIG_FILE", "")
	t.Setenv("QUERY_DEFAULT_LIMIT", "")
	t.Setenv("QUERY_MAX_NOTES", "")
	t.Setenv("TAG_MIN_CONFIDENCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NATSSubject != "notes.created" {
		t.Fatalf("expected default subject notes.created, got %q", cfg.NATSSubject)
	}
	if cfg.QueryDefaultLimit != 10 || cfg.QueryMaxNotes != 50 {
		t.Fatalf("expected default query limits 10/50, got %d/%d", cfg.QueryDefaultLimit, cfg.QueryMaxNotes)
	}
	if cfg.GenerationTimeout != 60*time.Second {
		t.Fatalf("expected default generation timeout 60s, got %v", cfg.GenerationTimeout)
	}
	if cfg.TagMinConfidence != 0.5 {
		t.Fatalf("expected default tag confidence threshold 0.5, got %v", cfg.TagMinConfidence)
	}
}

func TestLoadAppliesFileOverlayThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noteground.yaml")
	raw := []byte("query_default_limit: 4\nquery_max_notes: 8\nollama_gen_model: file-model\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("NOTEGROUND_CONFIG_FILE", path)
	t.Setenv("OLLAMA_GEN_MODEL", "env-model")
	t.Setenv("QUERY_DEFAULT_LIMIT", "")
	t.Setenv("QUERY_MAX_NOTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QueryDefaultLimit != 4 || cfg.QueryMaxNotes != 8 {
		t.Fatalf("expected file limits 4/8, got %d/%d", cfg.QueryDefaultLimit, cfg.QueryMaxNotes)
	}
	if cfg.OllamaGenModel != "env-model" {
		t.Fatalf("expected env override over file value, got %q", cfg.OllamaGenModel)
	}
}

func TestLoadRejectsOutOfRangeTagConfidence(t *testing.T) {
	t.Setenv("NOTEGROUND_CONFIG_FILE", "")
	t.Setenv("TAG_MIN_CONFIDENCE", "1.5")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range tag confidence")
	}
}
