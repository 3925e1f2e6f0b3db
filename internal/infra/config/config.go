package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Index backend identifiers accepted in INDEX_BACKEND.
const (
	BackendPinecone = "pinecone"
	BackendPgvector = "pgvector"
	BackendMemory   = "memory"
)

type Config struct {
	Env  string
	Port string

	// Embedding provider
	EmbedderURL         string
	EmbeddingModel      string
	EmbeddingDimensions int

	// Vector index backend: pinecone, pgvector or memory
	IndexBackend string

	PineconeHost      string
	PineconeAPIKey    string
	PineconeNamespace string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Web search fallback; empty URL disables the fallback entirely
	WebSearchURL string

	// Answer generation; disabled unless a URL is configured
	GenerationURL   string
	GenerationModel string

	// Pipeline tuning
	QualityThreshold float64
	MinIndexSources  int
	OverFetch        int
	PipelineCacheTTL time.Duration
	PipelineCacheMax int

	// Facade tuning
	AssistantCacheTTL time.Duration
	AssistantCacheMax int
	SearchTopK        int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		EmbedderURL:         getEnv("EMBEDDER_URL", "http://ollama:11434"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "embeddinggemma"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),

		IndexBackend: getEnv("INDEX_BACKEND", BackendPinecone),

		PineconeHost:      getEnv("PINECONE_HOST", ""),
		PineconeAPIKey:    getSecret("PINECONE_API_KEY", "PINECONE_API_KEY_FILE", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", "legal"),

		DBHost:     getEnv("DB_HOST", "legal-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "legal_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "legal_password"),
		DBName:     getEnv("DB_NAME", "legal_db"),

		WebSearchURL: getEnv("WEB_SEARCH_URL", ""),

		GenerationURL:   getEnv("GENERATION_URL", ""),
		GenerationModel: getEnv("GENERATION_MODEL", "gemma3:4b"),

		QualityThreshold: getEnvFloat("PIPELINE_QUALITY_THRESHOLD", 0.8),
		MinIndexSources:  getEnvInt("PIPELINE_MIN_INDEX_SOURCES", 2),
		OverFetch:        getEnvInt("PIPELINE_OVER_FETCH", 2),
		PipelineCacheTTL: getEnvDuration("PIPELINE_CACHE_TTL", 5*time.Minute),
		PipelineCacheMax: getEnvInt("PIPELINE_CACHE_MAX", 500),

		AssistantCacheTTL: getEnvDuration("ASSISTANT_CACHE_TTL", 10*time.Minute),
		AssistantCacheMax: getEnvInt("ASSISTANT_CACHE_MAX", 1000),
		SearchTopK:        getEnvInt("ASSISTANT_SEARCH_TOP_K", 5),
	}
}

// DSN builds the postgres connection string for the pgvector backend.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=disable"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
