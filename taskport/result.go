// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"errors"
	"time"

	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/registry"
)

// Outcome is the terminal state of one acquisition.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// GroupFailure records a processor set the enumeration had to skip.
type GroupFailure struct {
	Index int
	Kind  ErrorKind
	Err   error
}

// Result is the outcome of one acquisition.
type Result struct {
	Outcome  Outcome
	Strategy Strategy
	PID      int

	// Handle is the task handle when Outcome is OutcomeFound, else kernel.Null.
	Handle kernel.Handle
	// Group is the index of the processor set the match came from, or -1.
	Group int
	// Err is an *AcquisitionError when Outcome is OutcomeFailed.
	Err error

	// Skipped lists processor sets the enumeration could not scan.
	Skipped []GroupFailure
	// Handles counts the kernel resources acquired and released during the run.
	Handles registry.Stats

	Duration time.Duration
}

func found(h kernel.Handle) Result {
	return Result{Outcome: OutcomeFound, Handle: h, Group: -1}
}

func notFound() Result {
	return Result{Outcome: OutcomeNotFound, Group: -1}
}

func failed(kind ErrorKind, err error) Result {
	return Result{Outcome: OutcomeFailed, Group: -1, Err: newAcquisitionError(kind, err)}
}

// Found reports whether the result carries a task handle.
func (r Result) Found() bool {
	return r.Outcome == OutcomeFound && !r.Handle.IsNull()
}

// Kind returns the failure kind, KindNotFound for a finished scan without a
// match, or "" when a handle was found.
func (r Result) Kind() ErrorKind {
	switch r.Outcome {
	case OutcomeFound:
		return ""
	case OutcomeNotFound:
		return KindNotFound
	}
	var aerr *AcquisitionError
	if errors.As(r.Err, &aerr) {
		return aerr.Kind
	}
	return ""
}

// Status returns the kernel status behind a failure, or kernel.StatusSuccess.
func (r Result) Status() kernel.Status {
	var aerr *AcquisitionError
	if errors.As(r.Err, &aerr) {
		return aerr.Status
	}
	return kernel.StatusSuccess
}
