//go:build unit

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogConfigDefaults(t *testing.T) {
	cfg, err := LoadCatalogConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 600, cfg.CacheTTL.ConflictsMatrixSeconds)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadEntitlementConfigEnvOverride(t *testing.T) {
	t.Setenv("USERENTITLEMENT_SERVER_PORT", "9090")
	t.Setenv("USERENTITLEMENT_BROKER_VALIDATION_QUEUE", "custom_validation_queue")

	cfg, err := LoadEntitlementConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "custom_validation_queue", cfg.Broker.ValidationQueue)
	assert.Equal(t, 60, cfg.RepublishIntervalSeconds)
}

func TestLoadValidationConfigDefaultsDownstreamURLs(t *testing.T) {
	cfg, err := LoadValidationConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Catalog.BaseURL)
	assert.NotEmpty(t, cfg.Entitlement.BaseURL)
}

func TestDatabaseConfigDSNPrefersURL(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Contains(t, db.DSN(), "host=h")

	db.URL = "postgres://example/db"
	assert.Equal(t, "postgres://example/db", db.DSN())
}

func TestBrokerConfigURI(t *testing.T) {
	b := BrokerConfig{Host: "mq", Port: 5672, User: "guest", Password: "guest", VHost: "/"}
	assert.Equal(t, "amqp://guest:guest@mq:5672/", b.URI())

	b.URL = "amqp://override"
	assert.Equal(t, "amqp://override", b.URI())
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
