package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
[Discord]
webhook_url = "https://discord.com/api/webhooks/123/abc"
batch_size = 10

[Fallback]
enable_fallback = false
enable_compression = true
compression_quality = 60
max_file_size_mb = 4.5
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	if fc.Discord.WebhookURL != "https://discord.com/api/webhooks/123/abc" {
		t.Errorf("webhook_url = %q", fc.Discord.WebhookURL)
	}
	if fc.Discord.BatchSize != 10 {
		t.Errorf("batch_size = %d, want 10", fc.Discord.BatchSize)
	}
	if fc.Fallback.EnableFallback == nil || *fc.Fallback.EnableFallback {
		t.Error("enable_fallback should parse as explicit false")
	}
	if fc.Fallback.EnableCompression == nil || !*fc.Fallback.EnableCompression {
		t.Error("enable_compression should parse as explicit true")
	}
	if fc.Fallback.CompressionQuality != 60 {
		t.Errorf("compression_quality = %d, want 60", fc.Fallback.CompressionQuality)
	}
	if fc.Fallback.MaxFileSizeMB != 4.5 {
		t.Errorf("max_file_size_mb = %g, want 4.5", fc.Fallback.MaxFileSizeMB)
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `[Discord`)
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig accepted malformed TOML")
	}
}

func TestApplyFileConfig(t *testing.T) {
	falseVal := false

	tests := []struct {
		name     string
		fc       fileConfig
		changed  map[string]bool
		initial  Config
		expected Config
	}{
		{
			name: "applies all values",
			fc: fileConfig{
				Discord: discordSection{
					WebhookURL: "https://example.com/w",
					BatchSize:  3,
				},
				Fallback: fallbackSection{
					EnableFallback:     &falseVal,
					CompressionQuality: 70,
					MaxFileSizeMB:      2.0,
				},
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				WebhookURL:         "https://example.com/w",
				BatchSize:          3,
				EnableFallback:     false,
				EnableCompression:  true,
				CompressionQuality: 70,
				MaxFileSizeMB:      2.0,
			},
		},
		{
			name: "respects changed flags",
			fc: fileConfig{
				Discord: discordSection{
					WebhookURL: "https://file.example.com/w",
					BatchSize:  3,
				},
			},
			changed: map[string]bool{"webhook-url": true},
			initial: Config{
				WebhookURL:         "https://flag.example.com/w",
				BatchSize:          5,
				EnableFallback:     true,
				EnableCompression:  true,
				CompressionQuality: 80,
				MaxFileSizeMB:      8.0,
			},
			expected: Config{
				WebhookURL:         "https://flag.example.com/w", // flag wins
				BatchSize:          3,
				EnableFallback:     true,
				EnableCompression:  true,
				CompressionQuality: 80,
				MaxFileSizeMB:      8.0,
			},
		},
		{
			name:     "absent keys keep defaults",
			fc:       fileConfig{},
			changed:  map[string]bool{},
			initial:  DefaultConfig(),
			expected: DefaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			if err := ApplyFileConfig(&cfg, tt.fc, tt.changed); err != nil {
				t.Fatalf("ApplyFileConfig: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
