package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskroom/taskroom/internal/config"
)

func sqliteConfig() *config.Config {
	return &config.Config{Database: config.DBCfg{Driver: "sqlite", DSN: "file::memory:"}}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{Database: config.DBCfg{Driver: "oracle"}})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = New(&config.Config{Database: config.DBCfg{Driver: "postgres"}})
	assert.ErrorContains(t, err, "dsn is required")
}

func TestMigrateAndClose(t *testing.T) {
	d, err := New(sqliteConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(d))
	assert.True(t, d.Migrator().HasTable("messages"))

	require.NoError(t, Close(d))
	sqlDB, err := d.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestRegisterOpenTelemetryPlugin(t *testing.T) {
	d, err := New(sqliteConfig())
	require.NoError(t, err)
	defer Close(d)

	require.NoError(t, RegisterOpenTelemetryPlugin(d))
	assert.Error(t, RegisterOpenTelemetryPlugin(d), "a plugin registers once")

	require.NoError(t, Migrate(d))
	var n int64
	require.NoError(t, d.Table("users").Count(&n).Error)
}
