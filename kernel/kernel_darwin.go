// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

//go:build darwin && cgo

package kernel

/*
#include <stdint.h>
#include <mach/mach.h>
#include <mach/mach_traps.h>
#include <mach/host_priv.h>
#include <mach/processor_set.h>

// The MIG prototypes use a family of typedefs for mach_port_t. These shims
// take plain mach_port_t so the Go side needs no per-call conversions.

static kern_return_t tp_task_for_pid(int pid, mach_port_t *task) {
	return task_for_pid(mach_task_self(), pid, task);
}

static kern_return_t tp_host_priv_port(mach_port_t *priv) {
	mach_port_t host = mach_host_self();
	kern_return_t kr = host_get_host_priv_port(host, priv);
	mach_port_deallocate(mach_task_self(), host);
	return kr;
}

static kern_return_t tp_processor_sets(mach_port_t host, mach_port_t **sets, mach_msg_type_number_t *count) {
	return host_processor_sets(host, (processor_set_name_array_t *)sets, count);
}

static kern_return_t tp_processor_set_priv(mach_port_t host, mach_port_t set, mach_port_t *priv) {
	return host_processor_set_priv(host, set, priv);
}

static kern_return_t tp_processor_set_tasks(mach_port_t set, mach_port_t **tasks, mach_msg_type_number_t *count) {
	return processor_set_tasks(set, (task_array_t *)tasks, count);
}

static kern_return_t tp_pid_for_task(mach_port_t task, int *pid) {
	return pid_for_task(task, pid);
}

static kern_return_t tp_port_deallocate(mach_port_t name) {
	return mach_port_deallocate(mach_task_self(), name);
}

static kern_return_t tp_vm_deallocate(uint64_t addr, uint64_t size) {
	return vm_deallocate(mach_task_self(), (vm_address_t)addr, (vm_size_t)size);
}
*/
import "C"

import "unsafe"

type machKernel struct{}

// New returns the Mach binding for the current task.
func New() (Kernel, error) {
	return machKernel{}, nil
}

func check(op string, kr C.kern_return_t) error {
	if kr == 0 {
		return nil
	}
	return &Error{Op: op, Code: Status(kr)}
}

// newArray copies the port names out of a MIG out-of-line array and keeps
// its address so the allocation can be returned with vm_deallocate.
func newArray(ptr *C.mach_port_t, count C.mach_msg_type_number_t) *Array {
	a := &Array{
		addr: uint64(uintptr(unsafe.Pointer(ptr))),
		size: uint64(count) * uint64(unsafe.Sizeof(C.mach_port_t(0))),
	}
	if ptr == nil || count == 0 {
		return a
	}
	names := unsafe.Slice(ptr, int(count))
	a.Handles = make([]Handle, len(names))
	for i, name := range names {
		a.Handles[i] = Handle(name)
	}
	return a
}

func (machKernel) TaskForPID(pid int) (Handle, error) {
	var task C.mach_port_t
	if err := check("task_for_pid", C.tp_task_for_pid(C.int(pid), &task)); err != nil {
		return Null, err
	}
	return Handle(task), nil
}

func (machKernel) HostPrivPort() (Handle, error) {
	var priv C.mach_port_t
	if err := check("host_get_host_priv_port", C.tp_host_priv_port(&priv)); err != nil {
		return Null, err
	}
	return Handle(priv), nil
}

func (machKernel) ProcessorSets(host Handle) (*Array, error) {
	var sets *C.mach_port_t
	var count C.mach_msg_type_number_t
	if err := check("host_processor_sets", C.tp_processor_sets(C.mach_port_t(host), &sets, &count)); err != nil {
		return nil, err
	}
	return newArray(sets, count), nil
}

func (machKernel) ProcessorSetPriv(host, set Handle) (Handle, error) {
	var priv C.mach_port_t
	kr := C.tp_processor_set_priv(C.mach_port_t(host), C.mach_port_t(set), &priv)
	if err := check("host_processor_set_priv", kr); err != nil {
		return Null, err
	}
	return Handle(priv), nil
}

func (machKernel) ProcessorSetTasks(set Handle) (*Array, error) {
	var tasks *C.mach_port_t
	var count C.mach_msg_type_number_t
	if err := check("processor_set_tasks", C.tp_processor_set_tasks(C.mach_port_t(set), &tasks, &count)); err != nil {
		return nil, err
	}
	return newArray(tasks, count), nil
}

func (machKernel) PIDForTask(task Handle) (int, error) {
	var pid C.int
	if err := check("pid_for_task", C.tp_pid_for_task(C.mach_port_t(task), &pid)); err != nil {
		return 0, err
	}
	return int(pid), nil
}

func (machKernel) Deallocate(h Handle) error {
	if h.IsNull() {
		return nil
	}
	return check("mach_port_deallocate", C.tp_port_deallocate(C.mach_port_t(h)))
}

func (machKernel) DeallocateArray(a *Array) error {
	if a == nil || a.addr == 0 {
		return nil
	}
	return check("vm_deallocate", C.tp_vm_deallocate(C.uint64_t(a.addr), C.uint64_t(a.size)))
}
