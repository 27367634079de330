// Package cliconfig loads the command-line tool's configuration with the
// usual precedence: flags override environment variables, which override the
// config file, which overrides defaults.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gmorks/ComfyUI-SendToDiscord/internal/delivery"
)

// Config is the flat CLI configuration. Delivery settings mirror
// delivery.Config; the rest drive the command itself.
type Config struct {
	WebhookURL         string
	BatchSize          int
	EnableFallback     bool
	EnableCompression  bool
	CompressionQuality int
	MaxFileSizeMB      float64

	// WatchDir, when set, runs the directory watch mode instead of sending
	// the argument files.
	WatchDir string

	// Batch queues files and flushes at the batch threshold.
	Batch bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	d := delivery.DefaultConfig()
	return Config{
		BatchSize:          d.BatchSize,
		EnableFallback:     d.EnableFallback,
		EnableCompression:  d.EnableCompression,
		CompressionQuality: d.CompressionQuality,
		MaxFileSizeMB:      d.MaxFileSizeMB,
	}
}

// DeliveryConfig converts the CLI configuration to the engine's Config.
func (c Config) DeliveryConfig() delivery.Config {
	return delivery.Config{
		WebhookURL:         c.WebhookURL,
		BatchSize:          c.BatchSize,
		EnableFallback:     c.EnableFallback,
		EnableCompression:  c.EnableCompression,
		CompressionQuality: c.CompressionQuality,
		MaxFileSizeMB:      c.MaxFileSizeMB,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return fmt.Errorf("webhook-url is required")
	}
	dc := c.DeliveryConfig()
	return dc.Validate()
}

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
