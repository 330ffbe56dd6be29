// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import "fmt"

// Process exit codes.
const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code out of a cobra command. A nil err
// means the outcome has already been printed.
type exitError struct {
	code  int
	err   error
	usage bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(format string, args ...any) *exitError {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...), usage: true}
}

func silentExit(code int) *exitError {
	return &exitError{code: code}
}
