package config

// DefaultPath is the settings file read when --config is not given.
const DefaultPath = "zcmlload.yaml"

// Config is the top-level structure mapping to zcmlload.yaml.
type Config struct {
	File              string            `yaml:"file"`               // ZCML file to load
	Features          []string          `yaml:"features"`           // declared before loading
	Execute           *bool             `yaml:"execute"`            // nil = true
	SystemInteraction bool              `yaml:"system_interaction"` // load as the system user
	LogLevel          string            `yaml:"log_level"`          // debug | info | warn | error
	Components        map[string]string `yaml:"components"`         // factory key → static component value
}

// ShouldExecute reports whether loaded actions should run.
func (c *Config) ShouldExecute() bool {
	return c.Execute == nil || *c.Execute
}
