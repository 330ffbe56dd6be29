// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"fmt"
	"time"

	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
)

// Reporter receives the result of a run before the handle is released.
type Reporter func(Result)

// Dispatcher runs exactly one strategy per request and owns the handle it
// returns until the result has been reported.
type Dispatcher struct {
	kernel     kernel.Kernel
	strategies map[Strategy]Acquirer
}

// NewDispatcher creates a dispatcher with the direct and enumerate strategies.
func NewDispatcher(k kernel.Kernel) *Dispatcher {
	return &Dispatcher{
		kernel: k,
		strategies: map[Strategy]Acquirer{
			StrategyDirect:    NewDirect(k),
			StrategyEnumerate: NewEnumerator(k),
		},
	}
}

// Dispatch validates pid, runs the selected strategy, passes the result to
// report and then releases the task handle. The returned Result keeps the
// handle value for display only; it is no longer held.
//
// An invalid pid or unknown strategy yields a Failed result without any
// kernel call. The error is non-nil only when releasing the handle fails.
func (d *Dispatcher) Dispatch(pid int, strategy Strategy, report Reporter) (Result, error) {
	start := time.Now()
	log := logutil.NewLogger("dispatch").WithTarget(pid).WithStrategy(string(strategy))

	res := d.acquire(pid, strategy)
	res.PID = pid
	res.Duration = time.Since(start)
	recordResult(res)

	if res.Outcome == OutcomeFailed {
		log.Debug("acquisition failed", "kind", res.Kind(), "error", res.Err)
	}

	if report != nil {
		report(res)
	}

	if !res.Found() {
		return res, nil
	}
	if err := d.kernel.Deallocate(res.Handle); err != nil {
		log.Error("failed to release task handle", "handle", res.Handle, "error", err)
		return res, fmt.Errorf("release task handle %s: %w", res.Handle, err)
	}
	recordRelease()
	log.Debug("released task handle", "handle", res.Handle)
	return res, nil
}

func (d *Dispatcher) acquire(pid int, strategy Strategy) Result {
	if err := checkPID(pid); err != nil {
		res := failed(KindInvalidTarget, err)
		res.Strategy = strategy
		return res
	}

	s, ok := strategy.Canonical()
	if !ok {
		res := failed(KindInvalidConfiguration, fmt.Errorf("unknown strategy %q (valid options: direct, enumerate)", string(strategy)))
		res.Strategy = strategy
		return res
	}

	res := d.strategies[s].Acquire(pid)
	res.Strategy = s
	return res
}
