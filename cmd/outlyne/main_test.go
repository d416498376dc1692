package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/itisrohit/Outlyne/internal/config"
)

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
}

func TestNewEmbedder(t *testing.T) {
	e, err := newEmbedder(&config.EmbeddingConfig{Backend: "mock", Dimensions: 16})
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 16 {
		t.Errorf("dimensions = %d, want 16", e.Dimensions())
	}

	if _, err := newEmbedder(&config.EmbeddingConfig{Backend: "nope"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
