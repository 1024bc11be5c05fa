package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, domain.DefaultBlindThreshold, cfg.Moderation.BlindThreshold)
	assert.Equal(t, 20*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, "의견목록", cfg.Export.Label)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
moderation:
  url: http://proxy/v1
  timeout: 5s
  blind_threshold: 0
database:
  host: db.internal
`), 0o600))

	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("MODERATION_BLIND_THRESHOLD", "4")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "http://proxy/v1", cfg.Moderation.URL)
	assert.Equal(t, 5*time.Second, cfg.Moderation.Timeout)
	assert.Equal(t, 4, cfg.Moderation.BlindThreshold)
}

func TestLoad_NonPositiveThresholdFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("moderation:\n  blind_threshold: -1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBlindThreshold, cfg.Moderation.BlindThreshold)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "****", mask("abcd"))
	assert.Equal(t, "se**et", mask("secret"))
}

func TestPath(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "configs/config.prod.yaml", Path())
}
