package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	// ProviderOpenAI selects the hosted OpenAI API via go-openai.
	ProviderOpenAI = "openai"
	// ProviderLocal selects an OpenAI-compatible server such as llama.cpp.
	ProviderLocal = "local"
)

// Config holds all configuration for the application.
type Config struct {
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMBaseURL      string `env:"LLM_BASE_URL"`
	LLMAPIKey       string `env:"LLM_API_KEY"`
	LLMDefaultModel string `env:"LLM_DEFAULT_MODEL" envDefault:"4o"`
	// LLMLocalModel is the model name sent to a local server for every variant.
	LLMLocalModel string `env:"LLM_LOCAL_MODEL" envDefault:"Llama-3.1-8B-Instruct"`

	EmbeddingProvider  string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`
	EmbeddingBaseURL   string `env:"EMBEDDING_BASE_URL"`
	EmbeddingModelName string `env:"EMBEDDING_MODEL_NAME" envDefault:"text-embedding-3-large"`

	QdrantURL        string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"multi_modal_rag"`
	// QdrantVectorSize must match the output size of the embedding model.
	QdrantVectorSize int `env:"QDRANT_VECTOR_SIZE"`
	// QdrantYearField is the payload key that year filters match against.
	QdrantYearField string `env:"QDRANT_YEAR_FIELD" envDefault:"year"`

	// HistoryDBPath enables durable conversation history when set.
	HistoryDBPath string `env:"HISTORY_DB_PATH"`

	DetectLanguages   []string `env:"DETECT_LANGUAGES" envDefault:"en,de" envSeparator:","`
	ParallelRetrieval bool     `env:"PARALLEL_RETRIEVAL" envDefault:"true"`

	APIPort   string     `env:"API_PORT" envDefault:"9000"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string     `env:"LOG_FILE"`
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.HistoryDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.EmbeddingProvider = strings.ToLower(strings.TrimSpace(c.EmbeddingProvider))

	if err := validateProvider("LLM_PROVIDER", c.LLMProvider, c.LLMBaseURL, c.LLMAPIKey); err != nil {
		return err
	}
	if err := validateProvider("EMBEDDING_PROVIDER", c.EmbeddingProvider, c.EmbeddingBaseURL, c.LLMAPIKey); err != nil {
		return err
	}

	if c.QdrantVectorSize <= 0 {
		return fmt.Errorf("QDRANT_VECTOR_SIZE is required and must be greater than 0")
	}

	langs := make([]string, 0, len(c.DetectLanguages))
	for _, l := range c.DetectLanguages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) < 2 {
		return fmt.Errorf("DETECT_LANGUAGES must list at least two languages")
	}
	c.DetectLanguages = langs

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}

	return nil
}

func validateProvider(key, provider, baseURL, apiKey string) error {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return fmt.Errorf("LLM_API_KEY is required when %s=%s", key, provider)
		}
	case ProviderLocal:
		if baseURL == "" {
			return fmt.Errorf("a base URL is required when %s=%s", key, provider)
		}
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", key, ProviderOpenAI, ProviderLocal, provider)
	}
	return nil
}

// loadDotEnv loads the first .env found walking up from the working directory.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
