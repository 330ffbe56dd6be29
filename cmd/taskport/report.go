// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"

	"github.com/jongio/taskport/cliout"
	"github.com/jongio/taskport/identity"
	"github.com/jongio/taskport/procutil"
	"github.com/jongio/taskport/registry"
	"github.com/jongio/taskport/taskport"
)

// report is the JSON form of one run.
type report struct {
	RunID       string          `json:"run_id"`
	PID         int             `json:"pid"`
	Strategy    string          `json:"strategy"`
	Outcome     string          `json:"outcome"`
	Handle      string          `json:"handle,omitempty"`
	Group       *int            `json:"group,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	Status      string          `json:"status,omitempty"`
	Error       string          `json:"error,omitempty"`
	Skipped     []skippedGroup  `json:"skipped,omitempty"`
	Handles     *registry.Stats `json:"handles,omitempty"`
	DurationMS  float64         `json:"duration_ms"`
	Alive       *bool           `json:"alive,omitempty"`
	ProcessName string          `json:"process_name,omitempty"`
	Identity    string          `json:"identity,omitempty"`
	Root        *bool           `json:"root,omitempty"`
}

type skippedGroup struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func newReport(runID string, res taskport.Result) report {
	r := report{
		RunID:      runID,
		PID:        res.PID,
		Strategy:   string(res.Strategy),
		Outcome:    string(res.Outcome),
		Kind:       string(res.Kind()),
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	if res.Found() {
		r.Handle = res.Handle.String()
	}
	if res.Group >= 0 {
		group := res.Group
		r.Group = &group
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
		r.Status = res.Status().String()
	}
	for _, s := range res.Skipped {
		r.Skipped = append(r.Skipped, skippedGroup{Index: s.Index, Kind: string(s.Kind), Error: s.Err.Error()})
	}
	if res.Handles.Acquired != nil {
		stats := res.Handles
		r.Handles = &stats
	}
	if needsHint(res) {
		alive := procutil.IsProcessRunning(res.PID)
		r.Alive = &alive
		if alive {
			r.ProcessName = procutil.Name(res.PID)
		}
		id := identity.Current()
		root := id.IsRoot()
		r.Identity = id.String()
		r.Root = &root
	}
	return r
}

func unsupportedReport(runID string, pid int, strategy taskport.Strategy, err error) report {
	return report{
		RunID:    runID,
		PID:      pid,
		Strategy: string(strategy),
		Outcome:  string(taskport.OutcomeFailed),
		Error:    err.Error(),
	}
}

// needsHint reports whether a liveness and identity hint helps explain res.
func needsHint(res taskport.Result) bool {
	switch res.Kind() {
	case taskport.KindNotFound, taskport.KindKernelDenied, taskport.KindHostPrivilegeDenied:
		return true
	}
	return false
}

func printResult(runID string, res taskport.Result) {
	r := newReport(runID, res)
	if cliout.IsJSON() {
		if err := cliout.PrintJSON(r); err != nil {
			cliout.Error("failed to encode report: %v", err)
		}
		return
	}

	for _, s := range res.Skipped {
		cliout.ItemWarning("skipped processor set %d: %v", s.Index, s.Err)
	}

	switch {
	case res.Found():
		if res.Strategy == taskport.StrategyEnumerate {
			cliout.Plain("SUCCESS with processor set enumeration (task port: %s, processor set %d)", res.Handle, res.Group)
		} else {
			cliout.Plain("SUCCESS with task_for_pid (task port: %s)", res.Handle)
		}
	case res.Outcome == taskport.OutcomeNotFound:
		cliout.Plain("FAIL: target process %d not found in any processor set", res.PID)
	default:
		cliout.Plain("FAIL: %s", failureText(res))
	}

	if r.Alive != nil {
		target := fmt.Sprintf("process %d", res.PID)
		if r.ProcessName != "" {
			target += fmt.Sprintf(" (%s)", r.ProcessName)
		}
		switch {
		case *r.Alive && r.Root != nil && !*r.Root:
			cliout.Info("%s is running; the kernel checked %s, retry as root", target, r.Identity)
		case *r.Alive:
			cliout.Info("%s is running; the kernel checked %s", target, r.Identity)
		default:
			cliout.Info("process %d does not appear to be running", res.PID)
		}
	}
}

func failureText(res taskport.Result) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	return string(res.Kind())
}
