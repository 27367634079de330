package cliconfig

import "os"

// Environment variable names recognized by ApplyEnvConfig.
const (
	envWebhookURL         = "SENDTODISCORD_WEBHOOK_URL"
	envBatchSize          = "SENDTODISCORD_BATCH_SIZE"
	envEnableFallback     = "SENDTODISCORD_ENABLE_FALLBACK"
	envEnableCompression  = "SENDTODISCORD_ENABLE_COMPRESSION"
	envCompressionQuality = "SENDTODISCORD_COMPRESSION_QUALITY"
	envMaxFileSizeMB      = "SENDTODISCORD_MAX_FILE_SIZE_MB"
)

// ApplyEnvConfig applies SENDTODISCORD_* environment variables to the
// Config. Values override the config file but lose to explicit flags
// (checked via the changed map). Parse errors are ignored for booleans and
// returned for numeric values.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("webhook-url", os.Getenv(envWebhookURL), &cfg.WebhookURL)
	if err := s.setIntFromString("batch-size", os.Getenv(envBatchSize), &cfg.BatchSize); err != nil {
		return err
	}
	s.setBoolFromString("fallback", os.Getenv(envEnableFallback), &cfg.EnableFallback)
	s.setBoolFromString("compression", os.Getenv(envEnableCompression), &cfg.EnableCompression)
	if err := s.setIntFromString("quality", os.Getenv(envCompressionQuality), &cfg.CompressionQuality); err != nil {
		return err
	}
	if err := s.setFloatFromString("max-file-size", os.Getenv(envMaxFileSizeMB), &cfg.MaxFileSizeMB); err != nil {
		return err
	}
	return nil
}
