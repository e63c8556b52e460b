package providers

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError represents a generic upstream generation failure. Whether it
// is worth retrying is the caller's decision; use Retriable to classify
// errors produced by this package.
type ProviderError struct {
	// Provider is the identity that returned the error.
	Provider ID

	// Message is the error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider ID, message string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Cause: cause}
}

// RateLimitError represents a rate-limited request. Retriable after the
// RetryAfter backoff, if the provider supplied one.
type RateLimitError struct {
	// Provider is the identity that rate limited the request.
	Provider ID

	// RetryAfter is the wait the provider suggested, zero if none.
	RetryAfter time.Duration

	// Message is the upstream error message.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// AuthError represents an authentication failure. Never retriable; the
// credential itself is wrong.
type AuthError struct {
	// Provider is the identity that rejected authentication.
	Provider ID

	// Message is the upstream error message.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// Retriable classifies a provider error: rate limits are retriable with
// backoff, authentication failures are fatal, and anything else is left to
// the caller (reported as not retriable here).
func Retriable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	return false
}

// ErrorType returns a short classification string for audit records:
// "rate_limit", "auth", or "provider".
func ErrorType(err error) string {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return "rate_limit"
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return "auth"
	}
	return "provider"
}
