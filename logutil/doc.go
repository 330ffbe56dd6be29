// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides structured logging for taskport, built on slog.
//
// Logs go to stderr so that stdout carries only the acquisition report.
//
// # Basic Usage
//
//	// Initialize logging (typically in main.go)
//	logutil.SetupLogger(debug, structured)
//
//	logutil.Debug("released kernel resource", "kind", "task", "handle", h)
//	logutil.Warn("processor set skipped", "group", i, "error", err)
//
// # Component Loggers
//
//	log := logutil.NewLogger("enumerate").WithTarget(pid)
//	log.WithGroup(2).Warn("processor_set_tasks failed", "error", err)
//
// # Debug Mode
//
// Debug logging is enabled by passing debug=true to SetupLogger or by setting
// TASKPORT_DEBUG=true before the process starts.
//
// # Structured Logging
//
// With structured=true the output is JSON:
//
//	{"time":"2026-01-15T10:30:00Z","level":"WARN","msg":"processor set skipped","component":"enumerate","group":1}
//
// Otherwise it uses slog's text format:
//
//	time=2026-01-15T10:30:00Z level=WARN msg="processor set skipped" component=enumerate group=1
package logutil
