package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "file", cfg.HeuristicsBackend)
	assert.True(t, cfg.RedactPHI)
	assert.InDelta(t, 0.5, cfg.FallbackConfidence, 1e-9)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.True(t, cfg.PersistNotes)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Zero(t, cfg.NotesRetention)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("HEURISTICS_BACKEND", "Redis")
	t.Setenv("REDACT_PHI", "false")
	t.Setenv("ENRICHMENT_TIMEOUT", "5s")
	t.Setenv("FALLBACK_CONFIDENCE", "0.4")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("NOTES_ALLOWED_SOURCES", "ehr,dictation")
	t.Setenv("NOTES_RETENTION", "720h")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "redis", cfg.HeuristicsBackend)
	assert.False(t, cfg.RedactPHI)
	assert.Equal(t, 5*time.Second, cfg.EnrichmentTimeout)
	assert.InDelta(t, 0.4, cfg.FallbackConfidence, 1e-9)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"ehr", "dictation"}, cfg.AllowedSources)
	assert.Equal(t, 720*time.Hour, cfg.NotesRetention)
}
