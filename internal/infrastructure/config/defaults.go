package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.WebhookRate == 0 {
		cfg.Server.WebhookRate = 50
	}
	if cfg.Server.WebhookBurst == 0 {
		cfg.Server.WebhookBurst = 100
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "vietcart"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "vietcart_logistics"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Redis defaults
	if cfg.Redis.Addr == "" && cfg.Redis.URL == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	// Kafka defaults
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = "logistics-core"
	}

	// Provider defaults
	if cfg.Providers.Retry.MaxAttempts == 0 {
		cfg.Providers.Retry.MaxAttempts = 3
	}
	if cfg.Providers.Retry.BackoffBase == 0 {
		cfg.Providers.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.Providers.FeeCacheTTL == 0 {
		cfg.Providers.FeeCacheTTL = 5 * time.Minute
	}
	if cfg.Providers.TrackingCacheTTL == 0 {
		cfg.Providers.TrackingCacheTTL = 2 * time.Minute
	}
	if cfg.Providers.FeeBudget == 0 {
		cfg.Providers.FeeBudget = 6 * time.Second
	}

	// Dispatch defaults
	if cfg.Dispatch.CandidateDepth == 0 {
		cfg.Dispatch.CandidateDepth = 3
	}
	if cfg.Dispatch.LocationTTL == 0 {
		cfg.Dispatch.LocationTTL = 30 * time.Second
	}
	if len(cfg.Dispatch.ResetTimezones) == 0 {
		cfg.Dispatch.ResetTimezones = map[string]string{
			"north":   "Asia/Ho_Chi_Minh",
			"central": "Asia/Ho_Chi_Minh",
			"south":   "Asia/Ho_Chi_Minh",
		}
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
