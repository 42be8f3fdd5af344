package config

import "time"

// Application constants
const (
	AppName    = "ecomdash"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (ECOMDASH_SERVER_PORT, ...).
	EnvPrefix = "ECOMDASH"

	// ConfigFileEnv overrides the config file search.
	ConfigFileEnv = "ECOMDASH_CONFIG_FILE"

	// Dashboard defaults
	DefaultDatasetPath = "data/orders.csv"
	DefaultCurrency    = "AUD"
	DefaultLocale      = "es-CO"
	DefaultTopN        = 5
	MaxTopN            = 50

	// Network timeouts
	DefaultRequestTimeout = 30 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second
	WebSocketMaxMessage   = 4096

	// Rate limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50
)
