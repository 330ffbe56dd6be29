// Package testutil provides helpers shared by taskport's tests.
//
// This package includes helpers for:
//   - Capturing stdout during test execution (CaptureOutput)
//   - Capturing cliout and logutil output into buffers (CaptureCLI, CaptureLogs)
//   - Writing fixture files into a per-test directory (WriteFile)
//
// All functions use t.Helper() for proper test line reporting and restore
// global state through t.Cleanup.
//
// Example usage:
//
//	func TestCommand(t *testing.T) {
//	    out := testutil.CaptureCLI(t)
//	    logs := testutil.CaptureLogs(t, true)
//
//	    runCommand()
//
//	    assert.Contains(t, out.String(), "SUCCESS")
//	    assert.Contains(t, logs.String(), "released")
//	}
package testutil
