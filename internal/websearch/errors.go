package websearch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common errors
var (
	ErrUnknownProvider   = errors.New("unknown search provider")
	ErrDuplicateProvider = errors.New("duplicate provider id")
	ErrMissingCredential = errors.New("provider enabled but credential missing")
)

// ErrorKind classifies provider failures for retry and fallback decisions.
type ErrorKind string

const (
	// KindNotConfigured and KindAuthFailed are permanent for the current
	// configuration and must not be retried.
	KindNotConfigured ErrorKind = "not_configured"
	KindAuthFailed    ErrorKind = "auth_failed"

	// KindBadRequest is a deterministic client error for this query;
	// retrying it would fail the same way, so it never trips the circuit.
	KindBadRequest ErrorKind = "bad_request"

	// KindRateLimited is a local gate rejection, treated as transient.
	KindRateLimited ErrorKind = "rate_limited"

	// Transient upstream failures, absorbed by fallback.
	KindTimeout  ErrorKind = "timeout"
	KindUpstream ErrorKind = "upstream"
	KindNetwork  ErrorKind = "network"
)

// ProviderError wraps a failure from one provider with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure may succeed on a later independent
// request once circuit state permits.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case KindNotConfigured, KindAuthFailed, KindBadRequest:
		return false
	default:
		return true
	}
}

func newProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// classifyError normalizes an adapter error to a *ProviderError. Errors
// already classified pass through unchanged.
func classifyError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newProviderError(provider, KindTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newProviderError(provider, KindTimeout, err)
		}
		return newProviderError(provider, KindNetwork, err)
	}

	return newProviderError(provider, KindUpstream, err)
}
