// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

//go:build !darwin || !cgo

package kernel

import (
	"errors"
	"fmt"
	"runtime"
)

// New reports that no Mach binding exists for this build.
func New() (Kernel, error) {
	return nil, fmt.Errorf("mach task handles on %s/%s: %w", runtime.GOOS, runtime.GOARCH, errors.ErrUnsupported)
}
