package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLBeforeInitDiscards(t *testing.T) {
	prev := Log
	Log = nil
	t.Cleanup(func() { Log = prev })

	require.NotNil(t, L())
	WithField("k", "v").Info("dropped")
}

func TestInitTagsService(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	Init("notes-service")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	var buf bytes.Buffer
	Log.SetOutput(&buf)
	WithFields(logrus.Fields{"note_id": "n-1"}).Info("parsed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notes-service", entry["service"])
	assert.Equal(t, "n-1", entry["note_id"])
	assert.Equal(t, "parsed", entry["msg"])
}

func TestInitBadLevelFallsBackToInfo(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })
	t.Setenv("LOG_LEVEL", "loud")

	Init("")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
