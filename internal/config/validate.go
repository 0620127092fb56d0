package config

import (
	"errors"
	"fmt"
)

// ValidateForRun checks the settings the server cannot start without.
func ValidateForRun(cfg *Config) error {
	var errs []error

	if err := cfg.Rule.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Rule.LockBackend == LockBackendRedis {
		if err := cfg.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}
