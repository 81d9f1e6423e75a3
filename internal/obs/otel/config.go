package otel

import "time"

// Config holds the configuration for the OTel meter setup.
type Config struct {
	// Enabled enables or disables metric tracking.
	Enabled bool

	// ExportInterval is the time between exports. Default: 10s
	ExportInterval time.Duration

	// ExportTimeout is the timeout for each export. Default: 30s
	ExportTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults. Metrics are off
// unless asked for: the CLI paths have no use for a periodic exporter.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        false,
		ExportInterval: 10 * time.Second,
		ExportTimeout:  30 * time.Second,
	}
}
