package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server and its storage.
type ServerConfig struct {
	ServerAddr         string `json:"server_addr"`
	LogLevel           string `json:"log_level"`
	DatabasePath       string `json:"database_path"`
	MetricsPath        string `json:"metrics_path"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec"`
}

// GenerationConfig bounds what a single request may ask of the generator.
type GenerationConfig struct {
	DefaultOrder     int   `json:"default_order"`
	MinOrder         int   `json:"min_order"`
	MaxOrder         int   `json:"max_order"`
	DefaultSentences int   `json:"default_sentences"`
	MaxSentences     int   `json:"max_sentences"`
	MaxWords         int   `json:"max_words"`
	MaxInputBytes    int64 `json:"max_input_bytes"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server     *ServerConfig     `json:"server_config"`
	Generation *GenerationConfig `json:"generation_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:         ":7280",
		LogLevel:           "info",
		DatabasePath:       "./data/parrot.db",
		MetricsPath:        "/metrics",
		ShutdownTimeoutSec: 10,
	}
}

// DefaultGenerationConfig creates a generation configuration with default values.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		DefaultOrder:     2,
		MinOrder:         1,
		MaxOrder:         3,
		DefaultSentences: 1,
		MaxSentences:     20,
		MaxWords:         200,
		MaxInputBytes:    1 << 20,
	}
}

// DefaultConfig returns a Config with every section set to its defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		Generation: DefaultGenerationConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Failing to
// write that file is logged and the defaults are still returned.
func LoadConfig(path string, logger *slog.Logger) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				logger.Warn("Failed to write default config file, running with defaults", "path", path, "error", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	// A section missing from the file decodes as nil.
	if config.Server == nil {
		config.Server = DefaultServerConfig()
	}
	if config.Generation == nil {
		config.Generation = DefaultGenerationConfig()
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	g := c.Generation
	if g.MinOrder < 1 {
		errs = append(errs, fmt.Errorf("min_order must be at least 1, got %d", g.MinOrder))
	}
	if g.MaxOrder < g.MinOrder {
		errs = append(errs, fmt.Errorf("max_order (%d) must not be below min_order (%d)", g.MaxOrder, g.MinOrder))
	}
	if g.DefaultOrder < g.MinOrder || g.DefaultOrder > g.MaxOrder {
		errs = append(errs, fmt.Errorf("default_order (%d) must be within [%d, %d]", g.DefaultOrder, g.MinOrder, g.MaxOrder))
	}
	if g.MaxSentences < 1 {
		errs = append(errs, fmt.Errorf("max_sentences must be at least 1, got %d", g.MaxSentences))
	}
	if g.DefaultSentences < 1 || g.DefaultSentences > g.MaxSentences {
		errs = append(errs, fmt.Errorf("default_sentences (%d) must be within [1, %d]", g.DefaultSentences, g.MaxSentences))
	}
	if g.MaxInputBytes < 1 {
		errs = append(errs, fmt.Errorf("max_input_bytes must be positive, got %d", g.MaxInputBytes))
	}
	if c.Server.ServerAddr == "" {
		errs = append(errs, errors.New("server_addr must be set"))
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("metrics_path must start with '/', got %q", c.Server.MetricsPath))
	}
	return errors.Join(errs...)
}

// parseLogLevel maps the configured level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
