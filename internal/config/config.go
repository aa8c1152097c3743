// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers an optional YAML file and PUSHLOG_ environment variables
//   on top of the defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// InstanceID scopes the inbox stream for this deployment. Inbox events
	// are appended to "inboxes-<InstanceID>".
	InstanceID string `koanf:"instance_id"`

	// EventStoreBaseURL is the base URL of the external event store.
	EventStoreBaseURL string `koanf:"eventstore_base_url"`

	// EventStoreUser and EventStorePassword are basic-auth credentials for
	// the event store.
	EventStoreUser     string `koanf:"eventstore_user"`
	EventStorePassword string `koanf:"eventstore_password"`

	// StoreTimeoutMS bounds every single call to the event store.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// AppendRetryMax and AppendRetryBaseMS tune the bounded exponential
	// backoff applied to transient store failures.
	AppendRetryMax    int `koanf:"append_retry_max"`
	AppendRetryBaseMS int `koanf:"append_retry_base_ms"`

	// StalenessWindowMS is how long a just-written entity may remain
	// invisible in its projection. Reads that participate in a causal chain
	// with a recent write poll up to this long before concluding NotFound.
	StalenessWindowMS int `koanf:"staleness_window_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":6565",
		InstanceID:         "default",
		EventStoreBaseURL:  "http://localhost:2113",
		EventStoreUser:     "admin",
		EventStorePassword: "changeit",
		StoreTimeoutMS:     5_000,
		AppendRetryMax:     3,
		AppendRetryBaseMS:  100,
		StalenessWindowMS:  1_000,
	}
}
