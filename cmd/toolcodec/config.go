package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/skosovsky/toolcodec"
)

// envLogLevel overrides logging.level from the config file.
const envLogLevel = "TOOLCODEC_LOG_LEVEL"

// Config is the CLI configuration. Files ending in .toml are read as TOML,
// everything else as YAML. ${VAR} references are expanded before parsing.
type Config struct {
	Codec   CodecConfig   `yaml:"codec" toml:"codec"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

type CodecConfig struct {
	SystemPrompt   string `yaml:"system_prompt" toml:"system_prompt"`
	MaxConcurrency int    `yaml:"max_concurrency" toml:"max_concurrency"`
	StrictSegments bool   `yaml:"strict_segments" toml:"strict_segments"`

	RepairTimeout    time.Duration `yaml:"-" toml:"-"`
	RepairTimeoutRaw string        `yaml:"repair_timeout" toml:"repair_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecConfig{
			SystemPrompt:   toolcodec.DefaultSystemPrompt,
			MaxConcurrency: 4,
			RepairTimeout:  2 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads the config at path on top of DefaultConfig. An empty path
// yields the defaults. The log level environment override is applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if lvl := os.Getenv(envLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Codec.RepairTimeoutRaw != "" {
		d, err := time.ParseDuration(c.Codec.RepairTimeoutRaw)
		if err != nil {
			return fmt.Errorf("invalid codec.repair_timeout: %w", err)
		}
		c.Codec.RepairTimeout = d
	}
	if c.Codec.SystemPrompt == "" {
		c.Codec.SystemPrompt = toolcodec.DefaultSystemPrompt
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Codec.MaxConcurrency < 0 {
		return fmt.Errorf("codec.max_concurrency must not be negative")
	}
	if c.Codec.RepairTimeout < 0 {
		return fmt.Errorf("codec.repair_timeout must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses logging.level (debug, info, warn, error).
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// Options converts the codec section into toolcodec options.
func (c *Config) Options(logger *slog.Logger) []toolcodec.Option {
	opts := []toolcodec.Option{
		toolcodec.WithLogger(logger),
		toolcodec.WithSystemPrompt(c.Codec.SystemPrompt),
		toolcodec.WithMaxConcurrency(c.Codec.MaxConcurrency),
		toolcodec.WithRepairTimeout(c.Codec.RepairTimeout),
		toolcodec.WithRepairer(toolcodec.ChainRepairer(
			toolcodec.DefaultRepairer(),
			toolcodec.WithRepairLogging(logger),
		)),
	}
	if c.Codec.StrictSegments {
		opts = append(opts, toolcodec.WithStrictSegments())
	}
	return opts
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}
