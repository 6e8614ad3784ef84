package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse("app:\n  name: taskroom-test\n")
	require.NoError(t, err)

	assert.Equal(t, "taskroom-test", cfg.App.Name)
	assert.Equal(t, 8000, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 300, cfg.Auth.AccessTTLSec)
	assert.Equal(t, 86400, cfg.Auth.RefreshTTLSec)
	assert.Equal(t, "memory", cfg.Chat.Broker)
	assert.False(t, cfg.Chat.RequireAuth)
	assert.False(t, cfg.Authz.LegacyConjunctiveUpdates)
	assert.Equal(t, "taskroom_events", cfg.RabbitMQ.Queue)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
}

func TestParse_FileValues(t *testing.T) {
	content := `
database:
  driver: sqlite
  dsn: "file::memory:"
auth:
  jwtSecret: s3cret
  accessTTLSec: 60
authz:
  legacyConjunctiveUpdates: true
chat:
  broker: redis
  allowedOrigins:
    - http://example.com
telemetry:
  enabled: true
  otlpEndpoint: http://collector:4317
  sampleRatio: 0.25
`
	cfg, err := parse(content)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 60, cfg.Auth.AccessTTLSec)
	assert.True(t, cfg.Authz.LegacyConjunctiveUpdates)
	assert.Equal(t, "redis", cfg.Chat.Broker)
	assert.Equal(t, []string{"http://example.com"}, cfg.Chat.AllowedOrigins)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "http://collector:4317", cfg.Telemetry.OtlpEndpoint)
	assert.Equal(t, 0.25, cfg.Telemetry.SampleRatio)
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("APP_AUTH_JWTSECRET", "from-env")
	t.Setenv("APP_APP_PORT", "9001")

	cfg, err := parse("auth:\n  jwtSecret: from-file\n")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 9001, cfg.App.Port)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := parse("app: [unclosed")
	assert.Error(t, err)
}
