// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import "log/slog"

// ComponentLogger provides component-scoped structured logging.
type ComponentLogger struct {
	slogger   *slog.Logger
	component string
}

// NewLogger creates a logger scoped to a named component.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{
		slogger:   Logger().With("component", component),
		component: component,
	}
}

func (l *ComponentLogger) with(args ...any) *ComponentLogger {
	return &ComponentLogger{
		slogger:   l.slogger.With(args...),
		component: l.component,
	}
}

// WithStrategy adds the acquisition strategy name.
func (l *ComponentLogger) WithStrategy(name string) *ComponentLogger {
	return l.with("strategy", name)
}

// WithTarget adds the target process identifier.
func (l *ComponentLogger) WithTarget(pid int) *ComponentLogger {
	return l.with("pid", pid)
}

// WithGroup adds the index of the processor set being scanned.
func (l *ComponentLogger) WithGroup(index int) *ComponentLogger {
	return l.with("group", index)
}

// WithFields adds alternating key-value pairs.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	return l.with(fields...)
}

// Component returns the component name for this logger.
func (l *ComponentLogger) Component() string {
	return l.component
}

func (l *ComponentLogger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

func (l *ComponentLogger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

func (l *ComponentLogger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

func (l *ComponentLogger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}
