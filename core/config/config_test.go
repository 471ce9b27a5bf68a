package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bucket-manager/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
log:
  level: debug
buckets:
  - qualifier: media
    primary: true
    endpoint: https://oss.example.com
    bucket: media
    credentials: /etc/creds/media.json
    public_url: https://cdn.example.com
  - qualifier: backups
    endpoint: http://minio.internal:9000
    region: eu-west-1
    bucket: backups
    access_key: AK
    secret_key: SK
    timeout_seconds: 5
`

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := config.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.True(t, cfg.Server.MetricsEnabled)
		assert.Equal(t, 10, cfg.Server.ShutdownTimeoutSeconds)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Empty(t, cfg.Buckets)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(sampleYAML), 0o600))

		cfg, err := config.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)

		require.Len(t, cfg.Buckets, 2)
		media := cfg.Buckets[0]
		assert.True(t, media.Primary)
		assert.Equal(t, "media", media.Qualifier)
		assert.Equal(t, "https://oss.example.com", media.Endpoint)
		assert.Equal(t, "/etc/creds/media.json", media.Credentials)
		assert.Equal(t, "https://cdn.example.com", media.PublicURL)

		backups := cfg.Buckets[1]
		assert.False(t, backups.Primary)
		assert.Equal(t, "eu-west-1", backups.Region)
		assert.Equal(t, "AK", backups.AccessKey)
		assert.Equal(t, "SK", backups.SecretKey)
		assert.Equal(t, 5, backups.TimeoutSeconds)
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(sampleYAML), 0o600))
		t.Setenv("SERVER_PORT", "7070")

		cfg, err := config.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Server.Port)
	})

	t.Run("DotEnv", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_API_KEY=secret\n"), 0o600))
		t.Setenv("SERVER_API_KEY", "")

		cfg, err := config.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.Server.ApiKey)
	})

	t.Run("ExplicitFileFromEnv", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "buckets.yaml")
		require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))
		t.Setenv(config.EnvConfigFile, file)

		cfg, err := config.LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Len(t, cfg.Buckets, 2)
	})

	t.Run("BrokenFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("buckets: [\n"), 0o600))

		_, err := config.LoadConfig(dir)
		assert.Error(t, err)
	})
}

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := config.LoadConfigFile(file)
	require.NoError(t, err)
	assert.Len(t, cfg.Buckets, 2)

	_, err = config.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
