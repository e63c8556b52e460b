// Package logging configures the process-wide slog logger and redacts
// sensitive values from log attributes before they are written. The gateway
// handles regulated data, so prompt text and raw identifiers are scrubbed at
// the logging boundary as well as at the audit boundary.
package logging
