// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
)

// ErrInsecurePermissions indicates a config file others can write to.
// taskport usually runs as root, so such a file could choose its method and
// output paths for it.
var ErrInsecurePermissions = errors.New("insecure config file permissions")

// checkPermissions rejects a group- or world-writable config file.
func checkPermissions(f *os.File) error {
	// Windows uses ACLs.
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if perm := info.Mode().Perm(); perm&0o022 != 0 {
		return fmt.Errorf("%w: %s is %#o", ErrInsecurePermissions, f.Name(), perm)
	}
	return nil
}
