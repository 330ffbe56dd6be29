// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"errors"
	"fmt"

	"github.com/jongio/taskport/kernel"
)

// ErrorKind classifies why an acquisition did not produce a handle.
type ErrorKind string

const (
	KindKernelDenied           ErrorKind = "KernelDenied"
	KindHostPrivilegeDenied    ErrorKind = "HostPrivilegeDenied"
	KindGroupEnumerationFailed ErrorKind = "GroupEnumerationFailed"
	KindPerGroupAccessDenied   ErrorKind = "PerGroupAccessDenied"
	KindTaskListFailed         ErrorKind = "TaskListFailed"
	KindNotFound               ErrorKind = "NotFound"
	KindInvalidConfiguration   ErrorKind = "InvalidConfiguration"
	KindInvalidTarget          ErrorKind = "InvalidTarget"
)

var (
	// ErrKernelDenied indicates task_for_pid refused the request.
	ErrKernelDenied = errors.New("kernel denied task handle")
	// ErrHostPrivilegeDenied indicates the host-privilege handle is unavailable.
	ErrHostPrivilegeDenied = errors.New("host privilege denied")
	// ErrGroupEnumerationFailed indicates the processor sets could not be listed.
	ErrGroupEnumerationFailed = errors.New("processor set enumeration failed")
	// ErrPerGroupAccessDenied indicates one processor set refused privileged access.
	ErrPerGroupAccessDenied = errors.New("processor set access denied")
	// ErrTaskListFailed indicates one processor set's tasks could not be listed.
	ErrTaskListFailed = errors.New("processor set task list failed")
	// ErrNotFound indicates the scan finished without a match.
	ErrNotFound = errors.New("target not found")
	// ErrInvalidConfiguration indicates an unknown strategy selector.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidTarget indicates a pid that cannot name a target process.
	ErrInvalidTarget = errors.New("invalid target pid")
)

var kindErrors = map[ErrorKind]error{
	KindKernelDenied:           ErrKernelDenied,
	KindHostPrivilegeDenied:    ErrHostPrivilegeDenied,
	KindGroupEnumerationFailed: ErrGroupEnumerationFailed,
	KindPerGroupAccessDenied:   ErrPerGroupAccessDenied,
	KindTaskListFailed:         ErrTaskListFailed,
	KindNotFound:               ErrNotFound,
	KindInvalidConfiguration:   ErrInvalidConfiguration,
	KindInvalidTarget:          ErrInvalidTarget,
}

// Err returns the sentinel error for the kind.
func (k ErrorKind) Err() error {
	if err, ok := kindErrors[k]; ok {
		return err
	}
	return fmt.Errorf("unknown error kind %q", string(k))
}

// Recoverable reports whether a failure of this kind lets the scan continue.
func (k ErrorKind) Recoverable() bool {
	return k == KindPerGroupAccessDenied || k == KindTaskListFailed
}

// AcquisitionError is a failed acquisition step. errors.Is matches both the
// kind's sentinel and the underlying kernel error.
type AcquisitionError struct {
	Kind   ErrorKind
	Status kernel.Status
	Err    error
}

func newAcquisitionError(kind ErrorKind, err error) *AcquisitionError {
	e := &AcquisitionError{Kind: kind, Err: err}
	var kerr *kernel.Error
	if errors.As(err, &kerr) {
		e.Status = kerr.Code
	}
	return e
}

func (e *AcquisitionError) Error() string {
	if e.Err == nil {
		return e.Kind.Err().Error()
	}
	if errors.Is(e.Err, e.Kind.Err()) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind.Err(), e.Err)
}

func (e *AcquisitionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.Err()}
	}
	return []error{e.Kind.Err(), e.Err}
}
