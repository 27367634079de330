package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the config file's section layout. Bools are pointers so
// an absent key is distinguishable from an explicit false.
type fileConfig struct {
	Discord  discordSection  `toml:"Discord"`
	Fallback fallbackSection `toml:"Fallback"`
}

type discordSection struct {
	WebhookURL string `toml:"webhook_url"`
	BatchSize  int    `toml:"batch_size"`
}

type fallbackSection struct {
	EnableFallback     *bool   `toml:"enable_fallback"`
	EnableCompression  *bool   `toml:"enable_compression"`
	CompressionQuality int     `toml:"compression_quality"`
	MaxFileSizeMB      float64 `toml:"max_file_size_mb"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the configuration file path used when --config
// is not given: ./config.toml when present, otherwise
// ~/.sendtodiscord/config.toml.
func DefaultConfigPath() string {
	if FileExists("config.toml") {
		return "config.toml"
	}
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".sendtodiscord", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("webhook-url", fc.Discord.WebhookURL, &cfg.WebhookURL)
	s.setInt("batch-size", fc.Discord.BatchSize, &cfg.BatchSize)

	s.setBool("fallback", fc.Fallback.EnableFallback, &cfg.EnableFallback)
	s.setBool("compression", fc.Fallback.EnableCompression, &cfg.EnableCompression)
	s.setInt("quality", fc.Fallback.CompressionQuality, &cfg.CompressionQuality)
	s.setFloat("max-file-size", fc.Fallback.MaxFileSizeMB, &cfg.MaxFileSizeMB)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
