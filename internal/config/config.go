// Package config holds the serve command configuration, read from YAML
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML structure.
type Config struct {
	Server  ServerConf  `yaml:"server"`
	Logging LoggingConf `yaml:"logging"`
	Limits  LimitsConf  `yaml:"limits"`
	CORS    CORSConf    `yaml:"cors"`
}

// ServerConf holds listener and lifecycle settings. Timeouts are in
// seconds.
type ServerConf struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeout     int    `yaml:"read_timeout"`
	WriteTimeout    int    `yaml:"write_timeout"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"`
}

// LoggingConf selects the log handler.
type LoggingConf struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// LimitsConf bounds what a single client may do. RatePerMinute 0 turns
// the rate limiter off.
type LimitsConf struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	RatePerMinute  int   `yaml:"rate_per_minute"`
	Burst          int   `yaml:"burst"`
}

// CORSConf lists allowed browser origins.
type CORSConf struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConf{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
		Logging: LoggingConf{
			Level:  "info",
			Format: "console",
		},
		Limits: LimitsConf{
			MaxUploadBytes: 20 << 20,
			RatePerMinute:  60,
			Burst:          10,
		},
		CORS: CORSConf{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides and validates. A missing file is not an error;
// the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides over the loaded values.
func applyEnv(cfg *Config) error {
	if host := os.Getenv("VRCPRESENCE_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("VRCPRESENCE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("config: VRCPRESENCE_PORT %q is not a number", port)
		}
		cfg.Server.Port = p
	}
	return nil
}

// Addr returns the host:port the server should listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate checks the config for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("config: timeouts must not be negative")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return errors.New("config: max_upload_bytes must be positive")
	}
	if c.Limits.RatePerMinute < 0 {
		return errors.New("config: rate_per_minute must not be negative")
	}
	if c.Limits.RatePerMinute > 0 && c.Limits.Burst < 1 {
		return errors.New("config: burst must be at least 1 when rate limiting is on")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}
