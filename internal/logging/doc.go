// Package logging provides structured logging utilities for graphcal.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Build the process logger from configuration:
//
//	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(logger, "calendar.create")
//	logger.Info("event created",
//	    logging.EventID(id),
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("user operation",
//	    logging.UserHash(userID))
//
// # Security Considerations
//
//   - User ids and attendee emails are hashed to prevent PII leakage while allowing correlation
//   - Client secrets and tokens are never logged directly
package logging
