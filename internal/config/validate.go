package config

import (
	"fmt"
	"regexp"

	"github.com/aretw0/arbor/pkg/persistence/middleware"
)

// Validate returns configuration problems found in cfg.
// It does not mutate cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	switch cfg.Store {
	case StoreMemory:
	case StoreFile:
		if cfg.SessionsDir == "" {
			errs = append(errs, fmt.Errorf("ARBOR_SESSIONS_DIR must be set for the file store"))
		}
	case StoreRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("ARBOR_REDIS_ADDR must be set for the redis store"))
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("ARBOR_REDIS_DB must be >= 0"))
		}
	default:
		errs = append(errs, fmt.Errorf("ARBOR_STORE must be one of memory, file, redis (got %q)", cfg.Store))
	}

	if cfg.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("ARBOR_MAX_INPUT_SIZE must be > 0"))
	}

	if cfg.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("ARBOR_SESSION_TTL must be >= 0"))
	}

	if cfg.EncryptionKey != "" {
		if _, err := middleware.DecodeKey(cfg.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("ARBOR_ENCRYPTION_KEY: %w", err))
		}
	} else if len(cfg.EncryptionFallbackKeys) > 0 {
		errs = append(errs, fmt.Errorf("ARBOR_ENCRYPTION_FALLBACK_KEYS requires ARBOR_ENCRYPTION_KEY"))
	}
	for i, k := range cfg.EncryptionFallbackKeys {
		if _, err := middleware.DecodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("ARBOR_ENCRYPTION_FALLBACK_KEYS[%d]: %w", i, err))
		}
	}

	for _, p := range cfg.RedactPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("ARBOR_REDACT_PATTERNS: %w", err))
		}
	}

	return errs
}
