package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CatalogConfig locates the product catalog file
type CatalogConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// IndexConfig locates the persisted vector index
type IndexConfig struct {
	Dir        string `yaml:"dir" validate:"required"`
	Collection string `yaml:"collection" validate:"required"`
}

// EmbeddingConfig selects the embedding provider
type EmbeddingConfig struct {
	Provider string `yaml:"provider" validate:"oneof=ollama openai"`
	Model    string `yaml:"model" validate:"required"`
	BaseURL  string `yaml:"base_url"`
}

// LLMConfig configures the chat completion client
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url" validate:"required,url"`
	Model       string  `yaml:"model" validate:"required"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxRetries  int     `yaml:"max_retries" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gte=1"`
}

// RetrieverConfig configures maximum-marginal-relevance search
type RetrieverConfig struct {
	K          int     `yaml:"k" validate:"gte=1"`
	FetchK     int     `yaml:"fetch_k" validate:"gtefield=K"`
	LambdaMult float64 `yaml:"lambda_mult" validate:"gte=0,lte=1"`
}

// ChatConfig configures conversational sessions
type ChatConfig struct {
	HistoryTurns int `yaml:"history_turns" validate:"gte=0"`
}

// Settings is the root pipeline configuration
type Settings struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Chat      ChatConfig      `yaml:"chat"`
}

// Default returns the settings used when no config file is present
func Default() *Settings {
	return &Settings{
		Catalog: CatalogConfig{Path: filepath.Join("data", "product_info.json")},
		Index:   IndexConfig{Dir: filepath.Join("data", "db"), Collection: "products"},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "all-minilm",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "openai/gpt-oss-120b",
			Temperature: 0.3,
			MaxRetries:  3,
			TimeoutSecs: 60,
		},
		Retriever: RetrieverConfig{K: 5, FetchK: 50, LambdaMult: 0.5},
		Chat:      ChatConfig{HistoryTurns: 10},
	}
}

// Load reads settings from path on top of the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings against their validate tags
func (s *Settings) Validate() error {
	return validator.New().Struct(s)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
