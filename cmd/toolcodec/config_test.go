package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/toolcodec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, toolcodec.DefaultSystemPrompt, cfg.Codec.SystemPrompt)
	assert.Equal(t, 4, cfg.Codec.MaxConcurrency)
	assert.Equal(t, 2*time.Second, cfg.Codec.RepairTimeout)
	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Setenv("TOOLCODEC_TEST_PROMPT", "You route tools.")
	path := writeFile(t, "toolcodec.yaml", `
codec:
  system_prompt: ${TOOLCODEC_TEST_PROMPT}
  max_concurrency: 8
  strict_segments: true
  repair_timeout: 500ms
logging:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "You route tools.", cfg.Codec.SystemPrompt)
	assert.Equal(t, 8, cfg.Codec.MaxConcurrency)
	assert.True(t, cfg.Codec.StrictSegments)
	assert.Equal(t, 500*time.Millisecond, cfg.Codec.RepairTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeFile(t, "toolcodec.toml", `
[codec]
max_concurrency = 1
repair_timeout = "3s"

[logging]
level = "warn"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Codec.MaxConcurrency)
	assert.Equal(t, 3*time.Second, cfg.Codec.RepairTimeout)
	assert.Equal(t, toolcodec.DefaultSystemPrompt, cfg.Codec.SystemPrompt)
	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestLoadConfig_EnvLogLevel(t *testing.T) {
	t.Setenv(envLogLevel, "error")
	path := writeFile(t, "c.yaml", "logging:\n  level: debug\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name, file, content, errPart string
	}{
		{"bad duration", "c.yaml", "codec:\n  repair_timeout: soon\n", "repair_timeout"},
		{"negative concurrency", "c.yaml", "codec:\n  max_concurrency: -1\n", "max_concurrency"},
		{"bad level", "c.toml", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad yaml", "c.yaml", "codec: [\n", "parsing config"},
		{"bad toml", "c.toml", "[codec\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Codec.StrictSegments = true
	opts := cfg.Options(slog.Default())
	assert.Len(t, opts, 6)
	require.NotNil(t, toolcodec.NewTransformer(opts...))
}
