// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
	"github.com/jongio/taskport/registry"
)

// Acquirer is one acquisition strategy.
type Acquirer interface {
	// Acquire resolves the task handle of pid. A Found result transfers the
	// handle to the caller.
	Acquire(pid int) Result
}

// Direct requests the task handle with task_for_pid.
type Direct struct {
	kernel kernel.Kernel
}

// NewDirect creates the direct strategy.
func NewDirect(k kernel.Kernel) *Direct {
	return &Direct{kernel: k}
}

func (d *Direct) Acquire(pid int) Result {
	log := logutil.NewLogger("direct").WithTarget(pid)
	reg := registry.New(d.kernel)

	h, err := d.kernel.TaskForPID(pid)
	if err != nil {
		// Refusal is the normal outcome without the entitlement; report, don't retry.
		log.Info("task_for_pid refused", "status", kernel.StatusOf(err))
		res := failed(KindKernelDenied, err)
		res.Handles = reg.Stats()
		return res
	}

	task := reg.TrackHandle(registry.KindTask, h).Transfer()
	log.Debug("task_for_pid succeeded", "handle", task)

	res := found(task)
	res.Handles = reg.Stats()
	return res
}
