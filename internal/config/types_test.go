package config

import (
	"reflect"
	"testing"
)

// TestStructYAMLTags verifies that Config carries the yaml tags documented
// for zcmlload.yaml.
func TestStructYAMLTags(t *testing.T) {
	wantTags := map[string]string{
		"File":              "file",
		"Features":          "features",
		"Execute":           "execute",
		"SystemInteraction": "system_interaction",
		"LogLevel":          "log_level",
		"Components":        "components",
	}
	typ := reflect.TypeOf(Config{})
	if typ.NumField() != len(wantTags) {
		t.Errorf("Config has %d fields, want %d", typ.NumField(), len(wantTags))
	}
	for fieldName, wantTag := range wantTags {
		field, ok := typ.FieldByName(fieldName)
		if !ok {
			t.Errorf("Config missing field %q", fieldName)
			continue
		}
		if got := field.Tag.Get("yaml"); got != wantTag {
			t.Errorf("Config.%s yaml tag = %q, want %q", fieldName, got, wantTag)
		}
	}
}

// TestShouldExecute verifies that an absent execute key means true.
func TestShouldExecute(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name    string
		execute *bool
		want    bool
	}{
		{"unset", nil, true},
		{"true", &yes, true},
		{"false", &no, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Execute: tt.execute}
			if got := cfg.ShouldExecute(); got != tt.want {
				t.Errorf("ShouldExecute() = %v, want %v", got, tt.want)
			}
		})
	}
}
