package config

import (
	"strings"
	"testing"
)

// validConfig returns a minimal Config that passes Validate.
func validConfig() Config {
	return Config{
		File:     "site.zcml",
		Features: []string{"devmode"},
		LogLevel: "info",
		Components: map[string]string{
			"smtp": "localhost:25",
		},
	}
}

// TestValidConfigReturnsNil verifies that a fully valid config produces no errors.
func TestValidConfigReturnsNil(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("Validate returned unexpected error: %v", err)
	}
}

// TestValidateFieldErrors verifies that each invalid field produces a
// field-path error.
func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing file",
			mutate:  func(c *Config) { c.File = "" },
			wantErr: "file: required",
		},
		{
			name:    "empty feature",
			mutate:  func(c *Config) { c.Features = []string{"ok", ""} },
			wantErr: "features[1]: feature name is empty",
		},
		{
			name:    "feature with whitespace",
			mutate:  func(c *Config) { c.Features = []string{"two words"} },
			wantErr: "features[0]",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: `log_level: must be one of: debug, info, warn, error (got "verbose")`,
		},
		{
			name:    "empty component key",
			mutate:  func(c *Config) { c.Components = map[string]string{"": "x"} },
			wantErr: "components: factory key must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if err == nil {
				t.Fatalf("Validate returned nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestValidLogLevels verifies every accepted log level, including unset.
func TestValidLogLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			if err := Validate(&cfg); err != nil {
				t.Fatalf("Validate returned error for level %q: %v", level, err)
			}
		})
	}
}

// TestMultipleErrorsCollected verifies that Validate collects all errors
// and returns them together via errors.Join, not just the first.
func TestMultipleErrorsCollected(t *testing.T) {
	cfg := Config{
		Features: []string{""},
		LogLevel: "loud",
	}
	err := Validate(&cfg)
	if err == nil {
		t.Fatal("Validate returned nil for invalid config")
	}
	msg := err.Error()
	for _, want := range []string{"file: required", "features[0]", "log_level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error = %q, want it to contain %q", msg, want)
		}
	}
}
