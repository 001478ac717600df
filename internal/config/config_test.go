package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RECORDKEEPER_MONGO_URL", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECORDKEEPER_STORAGE", "local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "recordkeeper", cfg.Database)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(26214400), cfg.MaxFileSize)
	assert.False(t, cfg.RemoteStorage())
}

func TestLoadRequiresMongoURL(t *testing.T) {
	t.Setenv("RECORDKEEPER_MONGO_URL", "")
	t.Setenv("RECORDKEEPER_STORAGE", "local")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECORDKEEPER_STORAGE", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage strategy")
}

func TestLoadRemoteStrategyNeedsCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECORDKEEPER_STORAGE", "streamed")
	t.Setenv("RECORDKEEPER_S3_ENDPOINT", "")
	t.Setenv("RECORDKEEPER_S3_ACCESS_KEY", "")
	t.Setenv("RECORDKEEPER_S3_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRemoteStrategy(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RECORDKEEPER_STORAGE", "buffered")
	t.Setenv("RECORDKEEPER_S3_ENDPOINT", "objects.example.com")
	t.Setenv("RECORDKEEPER_S3_ACCESS_KEY", "access")
	t.Setenv("RECORDKEEPER_S3_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RemoteStorage())
	assert.Equal(t, "recordkeeper", cfg.S3Bucket)
	assert.True(t, cfg.S3UseSSL)
}
