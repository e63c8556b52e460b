package policy

import "fmt"

// ConfigError represents a malformed rule document or a rule referencing an
// unknown provider identity. A ConfigError rejects the whole load operation;
// no rule from the failed document is applied.
type ConfigError struct {
	// Path is the rule document path, if the error came from a file load.
	Path string

	// Rule is the offending rule name, if known.
	Rule string

	// Message describes the problem.
	Message string

	// Cause is the underlying error (parse failure), if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "policy config error"
	if e.Path != "" {
		msg += fmt.Sprintf(" [path=%s]", e.Path)
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" [rule=%s]", e.Rule)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(path, rule, message string, cause error) *ConfigError {
	return &ConfigError{Path: path, Rule: rule, Message: message, Cause: cause}
}
