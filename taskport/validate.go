// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"fmt"
	"math"
)

// MinPID is the smallest pid accepted as a target. Pid 0 is the kernel task
// and pid 1 is launchd.
const MinPID = 2

// MaxPID is the largest pid the kernel interface can carry; pid_t is 32 bits.
const MaxPID = math.MaxInt32

// ValidatePID rejects pids that cannot name a target process.
func ValidatePID(pid int) error {
	if err := checkPID(pid); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return nil
}

func checkPID(pid int) error {
	switch {
	case pid < MinPID:
		return fmt.Errorf("%d (must be greater than 1)", pid)
	case pid > MaxPID:
		return fmt.Errorf("%d (must not exceed %d)", pid, MaxPID)
	}
	return nil
}
