// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"testing"

	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirect_Found(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(4321))

	res := NewDirect(k).Acquire(4321)

	require.True(t, res.Found())
	assert.True(t, k.IsLive(res.Handle))
	assert.Equal(t, []string{"task_for_pid(4321)"}, k.Calls)
	assert.Equal(t, 1, res.Handles.Transferred[registry.KindTask])
}

func TestDirect_KernelDenied(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(4321))
	k.DirectErr = kernel.Fail("task_for_pid", kernel.StatusFailure)

	res := NewDirect(k).Acquire(4321)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, KindKernelDenied, res.Kind())
	assert.Equal(t, kernel.StatusFailure, res.Status())
	assert.ErrorIs(t, res.Err, ErrKernelDenied)
	assert.ErrorIs(t, res.Err, kernel.ErrDenied)
	assert.Equal(t, kernel.Null, res.Handle)
	assert.Len(t, k.Calls, 1, "refusal is reported, not retried")
	assert.Empty(t, k.Live())
}
