package delivery

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WebhookURL != "" {
		t.Errorf("WebhookURL = %q, want empty", cfg.WebhookURL)
	}
	if cfg.Enabled() {
		t.Error("default config should be disabled")
	}
	if cfg.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", cfg.BatchSize)
	}
	if !cfg.EnableFallback {
		t.Error("EnableFallback = false, want true")
	}
	if !cfg.EnableCompression {
		t.Error("EnableCompression = false, want true")
	}
	if cfg.CompressionQuality != 80 {
		t.Errorf("CompressionQuality = %d, want 80", cfg.CompressionQuality)
	}
	if cfg.MaxFileSizeMB != 8.0 {
		t.Errorf("MaxFileSizeMB = %g, want 8.0", cfg.MaxFileSizeMB)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Config) {}},
		{name: "zero batch size", mutate: func(c *Config) { c.BatchSize = 0 }, wantErr: true},
		{name: "negative batch size", mutate: func(c *Config) { c.BatchSize = -1 }, wantErr: true},
		{name: "quality over 100", mutate: func(c *Config) { c.CompressionQuality = 101 }, wantErr: true},
		{name: "negative quality", mutate: func(c *Config) { c.CompressionQuality = -1 }, wantErr: true},
		{name: "quality zero allowed", mutate: func(c *Config) { c.CompressionQuality = 0 }},
		{name: "zero max size", mutate: func(c *Config) { c.MaxFileSizeMB = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
