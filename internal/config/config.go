package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Primary provider (OpenAI-compatible chat completions)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Secondary provider (web-search-capable). Optional: an empty key means
	// the secondary path is unavailable and every request uses the primary.
	PerplexityAPIKey  string
	PerplexityBaseURL string

	// Redis-backed preference store. Optional: an in-memory store is used
	// when unset.
	RedisURL string

	// Catalog
	CatalogPath string

	// Conversation retention: number of non-seed messages kept per session.
	HistoryLimit int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		OpenAIAPIKey:      mustGetEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		PerplexityAPIKey:  getEnvOrDefault("PERPLEXITY_API_KEY", ""),
		PerplexityBaseURL: getEnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		CatalogPath:       getEnvOrDefault("CATALOG_PATH", "products.json"),
		HistoryLimit:      getEnvAsIntOrDefault("HISTORY_LIMIT", 40),
	}

	return cfg
}

// SecondaryConfigured reports whether the web-search-capable provider can be
// selected at all.
func (c *Config) SecondaryConfigured() bool {
	return c.PerplexityAPIKey != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
