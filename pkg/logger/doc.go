// Package logger provides a structured logging interface for the downloader.
//
// It wraps zerolog with a small interface that supports leveled messages,
// structured fields, error attachment and a process-wide logger:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("user_id", id).Info("Scan started")
//	logger.WithError(err).Error("Archive build failed")
//
// Console output goes to stderr in a compact colored format. When a log file
// is configured it additionally receives JSON lines.
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
