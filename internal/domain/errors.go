package domain

import "fmt"

// ConfigurationError marks a fatal misconfiguration detected at startup,
// such as an embedding dimensionality mismatch or missing credentials.
// It is never produced on the per-query path.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Reason)
}

// UpstreamError wraps a hard failure of the embedding provider or the
// primary vector index. It is the only error ProcessQuery returns; every
// other degradation yields a valid lower-confidence result.
type UpstreamError struct {
	Component string
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Component, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
