// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package kernel

import "fmt"

// Status is a kern_return_t value.
type Status int32

// Common kern_return_t codes from <mach/kern_return.h>.
const (
	StatusSuccess           Status = 0
	StatusInvalidAddress    Status = 1
	StatusProtectionFailure Status = 2
	StatusNoSpace           Status = 3
	StatusInvalidArgument   Status = 4
	StatusFailure           Status = 5
	StatusResourceShortage  Status = 6
	StatusNotReceiver       Status = 7
	StatusNoAccess          Status = 8
	StatusInvalidName       Status = 15
	StatusInvalidTask       Status = 16
	StatusInvalidRight      Status = 17
	StatusInvalidValue      Status = 18
	StatusNotSupported      Status = 46
)

var statusNames = map[Status]string{
	StatusSuccess:           "KERN_SUCCESS",
	StatusInvalidAddress:    "KERN_INVALID_ADDRESS",
	StatusProtectionFailure: "KERN_PROTECTION_FAILURE",
	StatusNoSpace:           "KERN_NO_SPACE",
	StatusInvalidArgument:   "KERN_INVALID_ARGUMENT",
	StatusFailure:           "KERN_FAILURE",
	StatusResourceShortage:  "KERN_RESOURCE_SHORTAGE",
	StatusNotReceiver:       "KERN_NOT_RECEIVER",
	StatusNoAccess:          "KERN_NO_ACCESS",
	StatusInvalidName:       "KERN_INVALID_NAME",
	StatusInvalidTask:       "KERN_INVALID_TASK",
	StatusInvalidRight:      "KERN_INVALID_RIGHT",
	StatusInvalidValue:      "KERN_INVALID_VALUE",
	StatusNotSupported:      "KERN_NOT_SUPPORTED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("KERN_UNKNOWN(%d)", int32(s))
}

// IsDenied reports whether s indicates the caller lacks the required privilege.
// task_for_pid reports a missing entitlement as KERN_FAILURE, so it counts too.
func (s Status) IsDenied() bool {
	switch s {
	case StatusProtectionFailure, StatusNoAccess, StatusFailure:
		return true
	}
	return false
}
