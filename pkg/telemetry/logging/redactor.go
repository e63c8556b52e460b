package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// redactedValue replaces sensitive attribute values.
const redactedValue = "[REDACTED]"

// sensitiveKeys are attribute keys whose values are always scrubbed. Matched
// case-insensitively on the final key segment.
var sensitiveKeys = map[string]bool{
	"prompt":        true,
	"system_prompt": true,
	"api_key":       true,
	"authorization": true,
	"password":      true,
	"token":         true,
}

// sensitivePatterns scrub identifier values appearing inside free-form
// string attributes.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),                                   // SSN
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),      // email
	regexp.MustCompile(`(?i)\b(sk|pk)-[A-Za-z0-9]{16,}\b`),                        // API keys
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]+=*`),                     // bearer tokens
}

// redactAttr is a slog ReplaceAttr hook scrubbing sensitive keys and values.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(attr.Key)] {
		return slog.String(attr.Key, redactedValue)
	}

	if attr.Value.Kind() == slog.KindString {
		s := attr.Value.String()
		for _, pattern := range sensitivePatterns {
			s = pattern.ReplaceAllString(s, redactedValue)
		}
		return slog.String(attr.Key, s)
	}
	return attr
}
