package config

import "time"

// ProvidersConfig holds shipping-provider integration settings. Per-shop
// credentials live encrypted in the database; this carries process-level
// knobs only.
type ProvidersConfig struct {
	// EncryptionKey derives the AES-256 key for the credential vault.
	EncryptionKey string `mapstructure:"encryption_key" validate:"required"`

	// Sandbox toggles carrier sandbox endpoints globally.
	Sandbox bool `mapstructure:"sandbox"`

	Retry RetryConfig `mapstructure:"retry"`

	// Fee quotes and tracking snapshots cache TTLs.
	FeeCacheTTL      time.Duration `mapstructure:"fee_cache_ttl"`
	TrackingCacheTTL time.Duration `mapstructure:"tracking_cache_ttl"`

	// FeeBudget bounds one whole fee-aggregation fan-out.
	FeeBudget time.Duration `mapstructure:"fee_budget"`
}

// RetryConfig holds the external-call retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// DispatchConfig holds the in-house dispatcher settings
type DispatchConfig struct {
	// CandidateDepth bounds how many ranked candidates one dispatch tries
	// before giving up with NoShipperAvailable.
	CandidateDepth int `mapstructure:"candidate_depth" validate:"min=1"`

	// ResetTimezones maps region code to IANA timezone for the daily
	// counter cut-over.
	ResetTimezones map[string]string `mapstructure:"reset_timezones"`

	// LocationTTL is how long a last-known shipper location outlives the
	// final sample.
	LocationTTL time.Duration `mapstructure:"location_ttl"`
}
