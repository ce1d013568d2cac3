package config

import (
	"errors"
	"fmt"

	"github.com/dmitriyb/zcmlload/internal/zcml"
)

// Validate checks all Config fields for completeness and consistency.
// It collects all errors and returns them via errors.Join.
func Validate(cfg *Config) error {
	var errs []error
	check := func(cond bool, path, msg string) {
		if !cond {
			errs = append(errs, fmt.Errorf("%s: %s", path, msg))
		}
	}

	check(cfg.File != "", "file", "required")

	for i, f := range cfg.Features {
		if err := zcml.ValidateFeatureName(f); err != nil {
			check(false, fmt.Sprintf("features[%d]", i), err.Error())
		}
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	check(validLevels[cfg.LogLevel], "log_level",
		fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.LogLevel))

	for key := range cfg.Components {
		check(key != "", "components", "factory key must not be empty")
	}
	return errors.Join(errs...)
}
