// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/chunker"
	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/embeddings"
)

// Config holds the ingestor service configuration.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Processing ProcessingConfig  `mapstructure:"processing"`
	Embedder   embeddings.Config `mapstructure:"embedder"`
	OCR        OCRConfig         `mapstructure:"ocr"`
	Storage    StorageConfig     `mapstructure:"storage"`
	Qdrant     QdrantConfig      `mapstructure:"qdrant"`
	Queue      QueueConfig       `mapstructure:"queue"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort int `mapstructure:"http_port"`
}

// ProcessingConfig holds pipeline tuning values. These are the knobs the
// spec treats as configuration constants rather than literals.
type ProcessingConfig struct {
	OCRThreshold       int     `mapstructure:"ocr_threshold"`
	ChunkSize          int     `mapstructure:"chunk_size"`
	OverlapSize        int     `mapstructure:"overlap_size"`
	DynamicSizing      bool    `mapstructure:"dynamic_sizing"`
	PreserveBoundaries bool    `mapstructure:"preserve_boundaries"`
	EmbedConcurrency   int     `mapstructure:"embed_concurrency"`
	TokensPerWord      float64 `mapstructure:"tokens_per_word"`
	WorkerCount        int     `mapstructure:"worker_count"`
}

// ChunkerConfig maps the processing settings onto the chunking engine.
func (p ProcessingConfig) ChunkerConfig() chunker.Config {
	return chunker.Config{
		ChunkSize:          p.ChunkSize,
		OverlapSize:        p.OverlapSize,
		DynamicSizing:      p.DynamicSizing,
		PreserveBoundaries: p.PreserveBoundaries,
	}
}

// OCRConfig points at the external OCR service. An empty base URL
// disables OCR and the extraction cascade falls through to text-only.
type OCRConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// StorageConfig holds the artifact store root.
type StorageConfig struct {
	Root string `mapstructure:"root"`
}

// QdrantConfig holds vector-store settings.
type QdrantConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addr       string `mapstructure:"addr"`
	Collection string `mapstructure:"collection"`
}

// QueueConfig holds job-queue settings.
type QueueConfig struct {
	Key string `mapstructure:"key"`
}

// Load reads configuration from the given file (or the default location
// under the user's home directory) plus INGESTOR_-prefixed environment
// variables. A missing config file is generated with defaults.
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("processing.ocr_threshold", 50)
	viper.SetDefault("processing.chunk_size", 0) // 0 = size from document length
	viper.SetDefault("processing.overlap_size", 100)
	viper.SetDefault("processing.dynamic_sizing", true)
	viper.SetDefault("processing.preserve_boundaries", true)
	viper.SetDefault("processing.embed_concurrency", 4)
	viper.SetDefault("processing.tokens_per_word", 1.3)
	viper.SetDefault("processing.worker_count", 5)
	viper.SetDefault("embedder.provider", "mock")
	viper.SetDefault("storage.root", "./data")
	viper.SetDefault("qdrant.enabled", false)
	viper.SetDefault("qdrant.addr", "localhost:6334")
	viper.SetDefault("qdrant.collection", "ingestor_chunks")
	viper.SetDefault("queue.key", "jobs:ingest")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".ingestor")
		configFile := filepath.Join(configDir, "config.yaml")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := writeDefaultConfig(configFile); err != nil {
				return nil, fmt.Errorf("failed to generate default config: %w", err)
			}
		}
		viper.SetConfigFile(configFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("No config file found, using defaults")
		} else if os.IsNotExist(err) {
			log.Printf("Config file %s missing, using defaults", viper.ConfigFileUsed())
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("INGESTOR")
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the pipeline would refuse anyway, so
// the failure happens at startup rather than on the first job.
func (c *Config) Validate() error {
	if c.Processing.OCRThreshold <= 0 {
		return fmt.Errorf("processing.ocr_threshold must be positive, got %d", c.Processing.OCRThreshold)
	}
	if c.Processing.ChunkSize < 0 || c.Processing.OverlapSize < 0 {
		return fmt.Errorf("chunk sizes must be non-negative")
	}
	if c.Processing.ChunkSize > 0 && c.Processing.OverlapSize >= c.Processing.ChunkSize {
		return fmt.Errorf("processing.overlap_size %d must be smaller than chunk_size %d",
			c.Processing.OverlapSize, c.Processing.ChunkSize)
	}
	if c.Processing.WorkerCount <= 0 {
		return fmt.Errorf("processing.worker_count must be positive, got %d", c.Processing.WorkerCount)
	}
	return nil
}

func writeDefaultConfig(path string) error {
	content := `# Document ingestor configuration
server:
  http_port: 8080

processing:
  ocr_threshold: 50
  chunk_size: 0 # 0 = pick from document length
  overlap_size: 100
  dynamic_sizing: true
  preserve_boundaries: true
  embed_concurrency: 4
  tokens_per_word: 1.3
  worker_count: 5

embedder:
  provider: mock # mock, openai, ollama
  model: ""
  api_key: ""
  base_url: ""

ocr:
  base_url: "" # empty disables OCR
  api_key: ""

storage:
  root: ./data

qdrant:
  enabled: false
  addr: localhost:6334
  collection: ingestor_chunks

queue:
  key: jobs:ingest
`
	return os.WriteFile(path, []byte(content), 0644)
}
