// Package config reads the process-wide quill configuration. One file
// configures every entrypoint; missing values fall back to defaults
// that work against a local redis and qdrant.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/quillback/quill/internal/source"
)

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type VectorStoreConfig struct {
	Type       string `yaml:"type"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	DSN        string `yaml:"dsn"`
	Collection string `yaml:"collection"`
}

type FigureStoreConfig struct {
	Type   string `yaml:"type"`
	Bucket string `yaml:"bucket"`
}

type EmbedderConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions uint   `yaml:"dimensions"`

	BatchSize   int `yaml:"batch_size"`
	BatchTokens int `yaml:"batch_tokens"`
	MaxAttempts int `yaml:"max_attempts"`

	// RequestsPerSecond caps the embedding call rate; zero disables
	// client-side rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type IngestConfig struct {
	Parser               string  `yaml:"parser"`
	MaxTokens            int     `yaml:"max_tokens"`
	MinTailTokens        int     `yaml:"min_tail_tokens"`
	HeadingSplitFraction float64 `yaml:"heading_split_fraction"`
	RetainImages         bool    `yaml:"retain_images"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type Config struct {
	Worker WorkerConfig `yaml:"worker"`

	Transport   RedisConfig       `yaml:"transport"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	FigureStore FigureStoreConfig `yaml:"figure_store"`

	Embedder EmbedderConfig `yaml:"embedder"`
	Ingest   IngestConfig   `yaml:"ingest"`

	Sources map[string]source.Config `yaml:"sources"`
}

func Default() *Config {
	return &Config{
		Worker: WorkerConfig{Concurrency: 4},
		Transport: RedisConfig{
			Addr: "localhost:6379",
		},
		VectorStore: VectorStoreConfig{
			Type:       "qdrant",
			Host:       "localhost",
			Port:       6334,
			Collection: "quill",
		},
		FigureStore: FigureStoreConfig{Type: "memory"},
		Embedder: EmbedderConfig{
			Provider:    "cohere",
			Dimensions:  1024,
			BatchSize:   96,
			BatchTokens: 8192,
			MaxAttempts: 5,
		},
		Ingest: IngestConfig{
			Parser:               "markdown",
			MaxTokens:            512,
			MinTailTokens:        64,
			HeadingSplitFraction: 0.5,
		},
	}
}

func ReadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	conf := Default()
	if err := yaml.Unmarshal(file, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return conf, nil
}
