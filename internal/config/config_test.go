package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
env: local
http_server:
  address: 0.0.0.0:8080
  timeout: 10s
db:
  user: estimator
  name: estimates
cors_origins:
  - http://localhost:5173
`), 0o600)
	require.NoError(t, err)

	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "estimator", cfg.DB.User)
	assert.Equal(t, "secret", cfg.DB.Password)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoad_MissingRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: local\n"), 0o600))

	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	os.Unsetenv("DB_USER")
	os.Unsetenv("DB_NAME")

	_, err := Load(path)
	assert.Error(t, err)
}
