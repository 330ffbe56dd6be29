// Package cliout provides the human-readable and JSON output of taskport.
//
// # Features
//
//   - Two output formats: default (human-readable) and JSON
//   - ANSI colors, disabled automatically when stdout is not a terminal
//   - Unicode symbols with ASCII fallbacks ([+], [-], [!], [i])
//
// # Basic Usage
//
//	cliout.Label("Target PID", "4321")
//	cliout.Success("SUCCESS with task_for_pid (task port: %s)", h)
//	cliout.Error("FAIL: task_for_pid failed (%d)", code)
//
// # Output Formats
//
//	if err := cliout.SetFormat("json"); err != nil {
//	    return err
//	}
//	if cliout.IsJSON() {
//	    return cliout.PrintJSON(report)
//	}
//
// Human-readable helpers print nothing in JSON mode so that stdout stays a
// single JSON document.
package cliout
