package cliconfig

import "testing"

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv(envWebhookURL, "https://env.example.com/w")
	t.Setenv(envBatchSize, "9")
	t.Setenv(envEnableCompression, "false")
	t.Setenv(envMaxFileSizeMB, "3.5")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.WebhookURL != "https://env.example.com/w" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
	if cfg.BatchSize != 9 {
		t.Errorf("BatchSize = %d, want 9", cfg.BatchSize)
	}
	if cfg.EnableCompression {
		t.Error("EnableCompression = true, want false")
	}
	if cfg.MaxFileSizeMB != 3.5 {
		t.Errorf("MaxFileSizeMB = %g, want 3.5", cfg.MaxFileSizeMB)
	}
	// Untouched vars keep defaults.
	if !cfg.EnableFallback {
		t.Error("EnableFallback = false, want default true")
	}
}

func TestApplyEnvConfig_FlagsWin(t *testing.T) {
	t.Setenv(envWebhookURL, "https://env.example.com/w")
	t.Setenv(envBatchSize, "9")

	cfg := DefaultConfig()
	cfg.WebhookURL = "https://flag.example.com/w"
	changed := map[string]bool{"webhook-url": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.WebhookURL != "https://flag.example.com/w" {
		t.Errorf("WebhookURL = %q, want flag value", cfg.WebhookURL)
	}
	if cfg.BatchSize != 9 {
		t.Errorf("BatchSize = %d, want env value 9", cfg.BatchSize)
	}
}

func TestApplyEnvConfig_BadNumber(t *testing.T) {
	t.Setenv(envBatchSize, "not-a-number")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("ApplyEnvConfig accepted a non-numeric batch size")
	}
}
