package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quillback/quill/internal/config"
)

func TestReadConfigOverridesDefaults(t *testing.T) {
	raw := `
worker:
  concurrency: 8
vector_store:
  type: pgvector
  dsn: postgres://localhost/quill
embedder:
  provider: openai
  dimensions: 1536
sources:
  docs:
    type: filesystem
    path: /srv/docs
`
	path := filepath.Join(t.TempDir(), "quill.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.ReadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Worker.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Worker.Concurrency)
	}
	if cfg.VectorStore.Type != "pgvector" || cfg.VectorStore.DSN != "postgres://localhost/quill" {
		t.Errorf("unexpected vector store config: %+v", cfg.VectorStore)
	}
	if cfg.Embedder.Provider != "openai" || cfg.Embedder.Dimensions != 1536 {
		t.Errorf("unexpected embedder config: %+v", cfg.Embedder)
	}

	// values absent from the file keep their defaults
	if cfg.Transport.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %q", cfg.Transport.Addr)
	}
	if cfg.Ingest.MaxTokens != 512 {
		t.Errorf("expected default token budget, got %d", cfg.Ingest.MaxTokens)
	}

	src, ok := cfg.Sources["docs"]
	if !ok || src.Type != "filesystem" || src.Path != "/srv/docs" {
		t.Errorf("unexpected sources: %+v", cfg.Sources)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := config.ReadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error")
	}
}
