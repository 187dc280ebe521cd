package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the CLI needs to wire the agent together.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	EmbeddingModel string
	EmbeddingDims  int

	PostgresURL string

	MaxSteps int
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. Missing optional values fall back to defaults; the API
// key is the only hard requirement.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_API_BASE_URL"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		EmbeddingDims:  getEnvInt("EMBEDDING_DIMS", 768),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		MaxSteps:       getEnvInt("AGENT_MAX_STEPS", 10),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
