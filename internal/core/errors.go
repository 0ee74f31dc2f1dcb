package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEmail is returned before any provider call when the input
	// body is empty or blank.
	ErrEmptyEmail = errors.New("email content is empty")

	// ErrAllStagesFailed is returned when every stage of a run failed,
	// which means the gateway itself is unusable.
	ErrAllStagesFailed = errors.New("all triage stages failed")
)

// ConfigurationError indicates a missing or invalid credential or
// provider setting detected at construction time, before any stage runs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failure of the inference gateway. Transient
// errors (network failures, 5xx responses) may be retried by the
// orchestrator; malformed or empty payloads may not.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a retryable provider failure.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Transient: true, Err: err}
}

// NewPermanentProviderError wraps err as a non-retryable provider failure.
func NewPermanentProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Transient: false, Err: err}
}

// IsTransient reports whether err is a provider failure worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}
