package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaGroupID     string
	NotesInputTopic  string
	NotesOutputTopic string
	NotesDLQTopic    string

	// Notes service
	PersistNotes     bool
	AllowedSources   []string
	MaxNoteChars     int
	BatchConcurrency int
	NotesRetention   time.Duration

	// Heuristics store: memory, file, redis or postgres
	HeuristicsBackend string
	HeuristicsDir     string

	// Reference data
	GuidelinesPath  string
	TerminologyPath string
	DLPRulesPath    string
	RedactPHI       bool

	// Parsing
	FallbackConfidence float64

	// Enrichment
	EnrichmentURL          string
	EnrichmentTimeout      time.Duration
	EnrichmentRetries      int
	EnrichmentClientID     string
	EnrichmentClientSecret string
	EnrichmentTokenURL     string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cardiology"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "cardiology"),
		PostgresDB:       getEnv("POSTGRES_DB", "cardiology"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaEnabled:     getBoolEnv("KAFKA_ENABLED", true),
		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "notes-service"),
		NotesInputTopic:  getEnv("NOTES_INPUT_TOPIC", "raw-notes"),
		NotesOutputTopic: getEnv("NOTES_OUTPUT_TOPIC", "parsed-notes"),
		NotesDLQTopic:    getEnv("NOTES_DLQ_TOPIC", "notes-dlq"),

		PersistNotes:     getBoolEnv("PERSIST_NOTES", true),
		AllowedSources:   getStringSliceEnv("NOTES_ALLOWED_SOURCES", nil),
		MaxNoteChars:     getIntEnv("MAX_NOTE_CHARS", 200000),
		BatchConcurrency: getIntEnv("BATCH_CONCURRENCY", 4),
		NotesRetention:   getDuration("NOTES_RETENTION", 0),

		HeuristicsBackend: strings.ToLower(getEnv("HEURISTICS_BACKEND", "file")),
		HeuristicsDir:     getEnv("HEURISTICS_DIR", "./data/heuristics"),

		GuidelinesPath:  getEnv("GUIDELINES_PATH", ""),
		TerminologyPath: getEnv("TERMINOLOGY_PATH", ""),
		DLPRulesPath:    getEnv("DLP_RULES_PATH", ""),
		RedactPHI:       getBoolEnv("REDACT_PHI", true),

		FallbackConfidence: getFloatEnv("FALLBACK_CONFIDENCE", 0.5),

		EnrichmentURL:          getEnv("ENRICHMENT_URL", ""),
		EnrichmentTimeout:      getDuration("ENRICHMENT_TIMEOUT", 20*time.Second),
		EnrichmentRetries:      getIntEnv("ENRICHMENT_RETRIES", 2),
		EnrichmentClientID:     getEnv("ENRICHMENT_CLIENT_ID", ""),
		EnrichmentClientSecret: getEnv("ENRICHMENT_CLIENT_SECRET", ""),
		EnrichmentTokenURL:     getEnv("ENRICHMENT_TOKEN_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
