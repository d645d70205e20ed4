// Package logging provides structured logging utilities for the calendar agent.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email and calendar id anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "proxy.list_events")
//	logger.Info("listing events",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("bulk operation",
//	    logging.Calendar(calendarID))
//
// # Security Considerations
//
// Calendar data is PII-dense, so this package is strict about what reaches
// log output:
//   - Calendar ids and attendee emails are hashed to allow correlation
//     without exposure
//   - Event titles, descriptions and locations are never logged
//   - Credentials are never logged directly
package logging
