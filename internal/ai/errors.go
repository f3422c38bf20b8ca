package ai

import "fmt"

// ConfigurationError means the completion credential is not available.
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Server configuration error: %s not set", e.Name)
}

// UpstreamError wraps any failure of the completion call. Its message is the
// underlying error's, unchanged.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }
