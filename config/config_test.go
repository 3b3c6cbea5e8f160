package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilab-dev/shadow-identity/config"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "shadow_identity", cfg.MongoDBName)
	assert.Equal(t, "identity_users", cfg.UsersCollection)
	assert.Equal(t, "identity_roles", cfg.RolesCollection)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Zero(t, cfg.RoleCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "shadow-identity", cfg.OtelServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IDENTITY_MONGO_URI", "mongodb://testhost:27018")
	t.Setenv("IDENTITY_MONGO_DB_NAME", "test_db")
	t.Setenv("IDENTITY_ROLE_CACHE_TTL", "30s")
	t.Setenv("IDENTITY_LOG_LEVEL", "debug")
	t.Setenv("IDENTITY_LOG_PRETTY", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://testhost:27018", cfg.MongoURI)
	assert.Equal(t, "test_db", cfg.MongoDBName)
	assert.Equal(t, 30*time.Second, cfg.RoleCacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mongo_db_name: from_file\nusers_collection: people\nconnect_timeout: 3s\n"), 0o600))
	t.Setenv("IDENTITY_MONGO_DB_NAME", "from_env")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.MongoDBName, "environment wins over the file")
	assert.Equal(t, "people", cfg.UsersCollection)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("IDENTITY_CONNECT_TIMEOUT", "not_a_duration")

	_, err := config.Load("")
	require.Error(t, err)
}
