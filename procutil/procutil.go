// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package procutil

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// IsProcessRunning checks if a process with the given PID exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 || int64(pid) > int64(^uint32(0)>>1) {
		return false
	}

	exists, err := process.PidExistsWithContext(context.Background(), int32(pid))
	if err != nil {
		return false
	}
	return exists
}

// Name returns the executable name of pid, or "" if it cannot be read.
func Name(pid int) string {
	if pid <= 0 || int64(pid) > int64(^uint32(0)>>1) {
		return ""
	}
	p, err := process.NewProcessWithContext(context.Background(), int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.NameWithContext(context.Background())
	if err != nil {
		return ""
	}
	return name
}
