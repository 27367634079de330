package delivery

import "fmt"

// Defaults applied by DefaultConfig and expected by the config file loader.
const (
	DefaultBatchSize          = 5
	DefaultCompressionQuality = 80
	DefaultMaxFileSizeMB      = 8.0
)

// Config holds the delivery policy settings. It is populated once at startup
// and treated as immutable for the process lifetime.
type Config struct {
	// WebhookURL is the outbound endpoint. Empty disables delivery entirely:
	// images are still persisted but no network call is ever made.
	WebhookURL string

	// BatchSize is the queue length that triggers an automatic flush.
	BatchSize int

	// EnableFallback sends queued items individually when a batch fails.
	EnableFallback bool

	// EnableCompression derives a lossy copy of files above MaxFileSizeMB
	// before sending.
	EnableCompression bool

	// CompressionQuality is the lossy encode quality, 0-100.
	CompressionQuality int

	// MaxFileSizeMB is the per-file size threshold above which compression
	// kicks in.
	MaxFileSizeMB float64
}

// DefaultConfig returns a Config with default values. WebhookURL is left
// empty, so delivery stays disabled until one is set.
func DefaultConfig() Config {
	return Config{
		BatchSize:          DefaultBatchSize,
		EnableFallback:     true,
		EnableCompression:  true,
		CompressionQuality: DefaultCompressionQuality,
		MaxFileSizeMB:      DefaultMaxFileSizeMB,
	}
}

// Enabled reports whether delivery is active.
func (c Config) Enabled() bool {
	return c.WebhookURL != ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.CompressionQuality < 0 || c.CompressionQuality > 100 {
		return fmt.Errorf("compression quality must be 0-100, got %d", c.CompressionQuality)
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max file size must be positive, got %g", c.MaxFileSizeMB)
	}
	return nil
}
