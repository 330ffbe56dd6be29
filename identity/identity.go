// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package identity reports the user and group identifiers of the running
// process, to explain why a privileged kernel call was refused.
package identity

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Identity holds the real and effective ids of a process.
type Identity struct {
	PID  int    `json:"pid"`
	UID  int    `json:"uid"`
	EUID int    `json:"euid"`
	GID  int    `json:"gid"`
	EGID int    `json:"egid"`
	Name string `json:"name,omitempty"`
}

// String formats the identity like the classic --whoami line.
func (i Identity) String() string {
	return fmt.Sprintf("uid=%d euid=%d", i.UID, i.EUID)
}

// IsRoot reports whether the effective user is root.
func (i Identity) IsRoot() bool {
	return i.EUID == 0
}

// Current returns the identity of the calling process.
func Current() Identity {
	id := Identity{
		PID:  os.Getpid(),
		UID:  os.Getuid(),
		EUID: os.Geteuid(),
		GID:  os.Getgid(),
		EGID: os.Getegid(),
	}

	// gopsutil reads the credentials the kernel reports, which also carries
	// the user name; the os values above stay authoritative when it fails.
	p, err := process.NewProcessWithContext(context.Background(), int32(id.PID))
	if err != nil {
		return id
	}
	if uids, err := p.UidsWithContext(context.Background()); err == nil && len(uids) >= 2 {
		id.UID, id.EUID = int(uids[0]), int(uids[1])
	}
	if gids, err := p.GidsWithContext(context.Background()); err == nil && len(gids) >= 2 {
		id.GID, id.EGID = int(gids[0]), int(gids[1])
	}
	if name, err := p.UsernameWithContext(context.Background()); err == nil {
		id.Name = name
	}
	return id
}
