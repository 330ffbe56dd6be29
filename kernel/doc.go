// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package kernel wraps the Mach calls used to obtain and release task handles.
//
// The Kernel interface models each call as a blocking function returning a
// status. On macOS with cgo enabled, New returns a binding to the real Mach
// traps and MIG routines:
//
//   - task_for_pid
//   - host_get_host_priv_port
//   - host_processor_sets
//   - host_processor_set_priv
//   - processor_set_tasks
//   - pid_for_task
//   - mach_port_deallocate / vm_deallocate
//
// On every other platform New returns an error wrapping errors.ErrUnsupported.
//
// # Ownership
//
// Every Handle returned by a Kernel is a send right owned by the caller and
// must be released with Deallocate exactly once. Every Array must be released
// with DeallocateArray; doing so frees the memory holding the port names but
// does not release the rights stored in it.
//
// # Testing
//
// MockKernel implements Kernel in memory. It issues unique handle names,
// records every call, injects faults at any step and reports leaked or
// double-released handles.
package kernel
