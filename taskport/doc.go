// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package taskport resolves the Mach task handle of a process from its pid.
//
// Two strategies are available:
//
//   - direct: a single task_for_pid call. This is refused unless the caller
//     holds the required entitlement or runs as root with SIP relaxed.
//   - enumerate: walks host → processor sets → per-set privileged handle →
//     task list and matches each task's pid. It needs the host-privilege
//     handle but never names the target up front.
//
// # Resource Discipline
//
// Every handle and array obtained during a run is tracked by a
// registry.Registry and released exactly once on every exit path. The only
// exception is the matched task handle, which is transferred to the caller.
// The Dispatcher releases it right after the result has been reported.
//
// The matched handle gets no extra reference: each entry returned by
// processor_set_tasks is an independent send right, so releasing the other
// entries and the array allocation leaves it intact.
//
// # Example Usage
//
//	k, err := kernel.New()
//	if err != nil {
//	    return err
//	}
//	d := taskport.NewDispatcher(k)
//	res, err := d.Dispatch(pid, taskport.StrategyEnumerate, func(r taskport.Result) {
//	    fmt.Println(r.Outcome, r.Handle)
//	})
package taskport
