package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	AI           AIConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AIConfig points at the external classification, embedding, and enrichment
// services, plus the LLM used for partial-match responses.
type AIConfig struct {
	ClassifierURL            string
	ClassifierTimeoutSeconds int
	EmbeddingURL             string
	EmbeddingTimeoutSeconds  int
	EnrichmentURL            string
	EnrichmentTimeoutSeconds int
	EmbeddingCacheTTLMinutes int
	OpenAIAPIKey             string
	OpenAIModel              string
}

// NotificationConfig holds outbound email settings.
type NotificationConfig struct {
	EmailFrom          string
	EmailWebhookURL    string
	SendTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-intake-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		AI: AIConfig{
			ClassifierURL:            os.Getenv("CLASSIFIER_URL"),
			ClassifierTimeoutSeconds: getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 8),
			EmbeddingURL:             os.Getenv("EMBEDDING_URL"),
			EmbeddingTimeoutSeconds:  getEnvAsInt("EMBEDDING_TIMEOUT_SECONDS", 10),
			EnrichmentURL:            os.Getenv("ENRICHMENT_URL"),
			EnrichmentTimeoutSeconds: getEnvAsInt("ENRICHMENT_TIMEOUT_SECONDS", 5),
			EmbeddingCacheTTLMinutes: getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 1440),
			OpenAIAPIKey:             os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Notification: NotificationConfig{
			EmailFrom:          getEnv("NOTIFY_EMAIL_FROM", "support@example.com"),
			EmailWebhookURL:    getEnv("NOTIFY_EMAIL_WEBHOOK_URL", ""),
			SendTimeoutSeconds: getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ClassifierTimeout returns the classifier call timeout.
func (c AIConfig) ClassifierTimeout() time.Duration {
	return time.Duration(c.ClassifierTimeoutSeconds) * time.Second
}

// EmbeddingTimeout returns the embedding call timeout.
func (c AIConfig) EmbeddingTimeout() time.Duration {
	return time.Duration(c.EmbeddingTimeoutSeconds) * time.Second
}

// EnrichmentTimeout returns the enrichment call timeout.
func (c AIConfig) EnrichmentTimeout() time.Duration {
	return time.Duration(c.EnrichmentTimeoutSeconds) * time.Second
}

// EmbeddingCacheTTL returns how long cached embeddings live.
func (c AIConfig) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.EmbeddingCacheTTLMinutes) * time.Minute
}

// SendTimeout returns the outbound email timeout.
func (n NotificationConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
