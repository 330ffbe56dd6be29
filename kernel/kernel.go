// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package kernel

import (
	"errors"
	"fmt"
)

// Handle is a Mach port name held by the calling task.
type Handle uint32

// Null is the "not held" sentinel.
const Null Handle = 0

// IsNull reports whether h is the Null sentinel.
func (h Handle) IsNull() bool {
	return h == Null
}

// String formats the handle the way Mach tooling prints port names.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint32(h))
}

// Array is a kernel-allocated list of handles, such as the processor sets of
// a host or the tasks of a processor set.
type Array struct {
	// Handles holds a copy of the port names stored in the allocation.
	Handles []Handle

	addr uint64
	size uint64
}

// Len returns the number of handles in the array. A nil array has length zero.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Handles)
}

// Kernel is the set of privileged calls needed to resolve a task handle.
// Implementations are not required to be safe for concurrent use.
type Kernel interface {
	// TaskForPID requests the task handle of pid using the caller's task as authority.
	TaskForPID(pid int) (Handle, error)
	// HostPrivPort acquires the host-privilege handle.
	HostPrivPort() (Handle, error)
	// ProcessorSets lists the processor sets known to host.
	ProcessorSets(host Handle) (*Array, error)
	// ProcessorSetPriv acquires the privileged handle for one processor set.
	ProcessorSetPriv(host, set Handle) (Handle, error)
	// ProcessorSetTasks lists the task handles of a privileged processor set.
	ProcessorSetTasks(set Handle) (*Array, error)
	// PIDForTask resolves the process identifier owning task.
	PIDForTask(task Handle) (int, error)
	// Deallocate releases one handle.
	Deallocate(h Handle) error
	// DeallocateArray frees the memory backing an array.
	DeallocateArray(a *Array) error
}

var (
	// ErrDenied matches kernel errors caused by missing privilege.
	ErrDenied = errors.New("kernel denied request")
	// ErrInvalidHandle matches kernel errors caused by a dead or unknown handle.
	ErrInvalidHandle = errors.New("invalid handle")
)

// Error is a failed kernel call.
type Error struct {
	Op   string
	Code Status
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Code, int32(e.Code))
}

// Is lets errors.Is match ErrDenied and ErrInvalidHandle by status class.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDenied:
		return e.Code.IsDenied()
	case ErrInvalidHandle:
		return e.Code == StatusInvalidName || e.Code == StatusInvalidRight
	}
	return false
}

// StatusOf extracts the kernel status from err, or StatusFailure if err does
// not carry one. It returns StatusSuccess for a nil error.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return StatusFailure
}
