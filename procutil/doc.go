// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package procutil answers liveness questions about processes.
//
// It wraps github.com/shirou/gopsutil/v4/process, which uses sysctl on macOS
// and /proc on Linux. Unlike os.FindProcess + Signal(0) it reports processes
// owned by other users as running, which matters when the caller is probing a
// target it has no permission to signal.
//
// # Example Usage
//
//	if !procutil.IsProcessRunning(pid) {
//	    fmt.Printf("process %d is not running\n", pid)
//	}
package procutil
