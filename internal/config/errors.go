package config

import "fmt"

// ConfigurationError marks a fatal startup fault: a missing or malformed
// model artifact, class list, or setting. The process must refuse to serve
// when one is returned; it is never used for per-request failures.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewConfigurationError wraps err with the configuration source it came from.
func NewConfigurationError(source string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Source: source, Err: err}
}
