// Package logger provides structured logging capabilities.
//
// The logger package sets up and configures the application's logging
// system using zap, providing structured, high-performance logging
// throughout the application. Components receive an explicit *zap.Logger
// rather than relying on a process-global logger, so concurrent scaffold
// evaluations never interleave unrelated logs.
package logger
