package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PUSHLOG_CONFIG is set
//  3. env (prefix PUSHLOG_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PUSHLOG_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PUSHLOG_ADDR, PUSHLOG_INSTANCE_ID, ...
	// Map env keys like PUSHLOG_STORE_TIMEOUT_MS -> store_timeout_ms and
	// preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PUSHLOG_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pushlog_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(cfg.InstanceID) == "":
		return fmt.Errorf("%w: instance_id must not be empty", ErrInvalidConfig)
	case cfg.EventStoreBaseURL == "":
		return fmt.Errorf("%w: eventstore_base_url must not be empty", ErrInvalidConfig)
	case cfg.StoreTimeoutMS <= 0:
		return fmt.Errorf("%w: store_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.AppendRetryMax < 0:
		return fmt.Errorf("%w: append_retry_max must not be negative", ErrInvalidConfig)
	case cfg.StalenessWindowMS < 0:
		return fmt.Errorf("%w: staleness_window_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
