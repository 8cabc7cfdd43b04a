package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, int64(20<<20), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 60, cfg.Limits.RatePerMinute)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  host: 0.0.0.0
  port: 9090
logging:
  format: json
limits:
  rate_per_minute: 120
  burst: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 120, cfg.Limits.RatePerMinute)
	// untouched keys keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, int64(20<<20), cfg.Limits.MaxUploadBytes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("VRCPRESENCE_HOST", "10.0.0.1")
	t.Setenv("VRCPRESENCE_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:7070", cfg.Addr())
}

func TestLoad_BadEnvPort(t *testing.T) {
	t.Setenv("VRCPRESENCE_PORT", "not-a-port")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -1 },
			wantErr: "timeouts",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Limits.MaxUploadBytes = 0 },
			wantErr: "max_upload_bytes",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.Limits.RatePerMinute = -5 },
			wantErr: "rate_per_minute",
		},
		{
			name:   "rate limiting off",
			mutate: func(c *Config) { c.Limits.RatePerMinute = 0; c.Limits.Burst = 0 },
		},
		{
			name:    "rate on with zero burst",
			mutate:  func(c *Config) { c.Limits.Burst = 0 },
			wantErr: "burst",
		},
		{
			name:    "unknown level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "log level",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
