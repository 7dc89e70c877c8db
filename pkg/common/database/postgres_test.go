package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "notes",
		PostgresPassword: "secret",
		PostgresDB:       "cardiology",
		PostgresSSLMode:  "require",
	}
	assert.Equal(t, "host=db user=notes password=secret dbname=cardiology port=5433 sslmode=require", PostgresDSN(cfg))
}

func TestClosePostgresNil(t *testing.T) {
	assert.NoError(t, ClosePostgres(nil))
}
