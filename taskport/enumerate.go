// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
	"github.com/jongio/taskport/registry"
)

// Enumerator finds the task handle by scanning every processor set's tasks.
type Enumerator struct {
	kernel kernel.Kernel
}

// NewEnumerator creates the enumeration strategy.
func NewEnumerator(k kernel.Kernel) *Enumerator {
	return &Enumerator{kernel: k}
}

// Acquire scans the processor sets in kernel order and returns the first task
// whose pid matches. Failures on a single processor set are recorded in
// Result.Skipped and the scan moves on.
func (e *Enumerator) Acquire(pid int) Result {
	log := logutil.NewLogger("enumerate").WithTarget(pid)
	reg := registry.New(e.kernel)

	res := e.scan(reg, pid, log)

	// Group names, the group list and the host handle go last, on every path.
	if err := reg.Close(); err != nil {
		log.Warn("failed to release enumeration resources", "error", err)
	}
	res.Handles = reg.Stats()
	return res
}

func (e *Enumerator) scan(reg *registry.Registry, pid int, log *logutil.ComponentLogger) Result {
	host, err := e.kernel.HostPrivPort()
	if err != nil {
		log.Error("host_get_host_priv_port failed", "status", kernel.StatusOf(err), "error", err)
		return failed(KindHostPrivilegeDenied, err)
	}
	reg.TrackHandle(registry.KindHost, host)

	sets, err := e.kernel.ProcessorSets(host)
	if err != nil {
		log.Error("host_processor_sets failed", "status", kernel.StatusOf(err), "error", err)
		return failed(KindGroupEnumerationFailed, err)
	}
	reg.TrackArray(registry.KindGroupList, sets)
	for _, set := range sets.Handles {
		reg.TrackHandle(registry.KindGroup, set)
	}
	log.Debug("enumerating processor sets", "count", sets.Len())

	var skipped []GroupFailure
	for i, set := range sets.Handles {
		task, failure := e.scanGroup(reg.Scope(), host, set, pid, log.WithGroup(i))
		if failure != nil {
			failure.Index = i
			skipped = append(skipped, *failure)
			continue
		}
		if !task.IsNull() {
			log.Info("found target task", "group", i, "handle", task)
			res := found(task)
			res.Group = i
			res.Skipped = skipped
			return res
		}
	}

	log.Info("target not found in any processor set", "groups", sets.Len(), "skipped", len(skipped))
	res := notFound()
	res.Skipped = skipped
	return res
}

// scanGroup looks for pid among one processor set's tasks. Everything it
// acquires is released through scope before it returns, except a matched
// task handle, which is transferred out.
func (e *Enumerator) scanGroup(scope *registry.Registry, host, set kernel.Handle, pid int, log *logutil.ComponentLogger) (kernel.Handle, *GroupFailure) {
	defer func() {
		if err := scope.Close(); err != nil {
			log.Warn("failed to release processor set resources", "error", err)
		}
	}()

	priv, err := e.kernel.ProcessorSetPriv(host, set)
	if err != nil {
		log.Warn("host_processor_set_priv failed, skipping processor set", "status", kernel.StatusOf(err), "error", err)
		return kernel.Null, &GroupFailure{Kind: KindPerGroupAccessDenied, Err: newAcquisitionError(KindPerGroupAccessDenied, err)}
	}
	scope.TrackHandle(registry.KindGroupPriv, priv)

	tasks, err := e.kernel.ProcessorSetTasks(priv)
	if err != nil {
		log.Warn("processor_set_tasks failed, skipping processor set", "status", kernel.StatusOf(err), "error", err)
		return kernel.Null, &GroupFailure{Kind: KindTaskListFailed, Err: newAcquisitionError(KindTaskListFailed, err)}
	}
	scope.TrackArray(registry.KindTaskList, tasks)

	entries := make([]*registry.Entry, len(tasks.Handles))
	for j, t := range tasks.Handles {
		entries[j] = scope.TrackHandle(registry.KindTask, t)
	}
	log.Debug("scanning processor set", "tasks", len(entries))

	for j, entry := range entries {
		got, err := e.kernel.PIDForTask(entry.Handle)
		if err != nil {
			log.Debug("pid_for_task failed", "task", j, "status", kernel.StatusOf(err))
			continue
		}
		if got == pid {
			return entry.Transfer(), nil
		}
	}
	return kernel.Null, nil
}
