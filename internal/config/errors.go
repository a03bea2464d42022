package config

import "fmt"

// ConfigError reports a missing or invalid setting. It is fatal at startup.
type ConfigError struct {
	Field string // dotted TOML path, e.g. "stt.provider"; empty for file errors
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
