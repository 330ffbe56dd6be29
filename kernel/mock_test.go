// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockKernel_Walk(t *testing.T) {
	m := NewMockKernel(MockSet(10, 11), MockSet(12))

	host, err := m.HostPrivPort()
	require.NoError(t, err)

	sets, err := m.ProcessorSets(host)
	require.NoError(t, err)
	require.Equal(t, 2, sets.Len())

	priv, err := m.ProcessorSetPriv(host, sets.Handles[1])
	require.NoError(t, err)

	tasks, err := m.ProcessorSetTasks(priv)
	require.NoError(t, err)
	require.Equal(t, 1, tasks.Len())

	pid, err := m.PIDForTask(tasks.Handles[0])
	require.NoError(t, err)
	assert.Equal(t, 12, pid)

	for _, h := range []Handle{tasks.Handles[0], priv, sets.Handles[0], sets.Handles[1], host} {
		require.NoError(t, m.Deallocate(h))
	}
	require.NoError(t, m.DeallocateArray(tasks))
	require.NoError(t, m.DeallocateArray(sets))

	assert.Empty(t, m.Live())
	assert.Empty(t, m.DoubleReleases())
	assert.Equal(t, 1, m.Released(MockHost))
	assert.Equal(t, 2, m.Released(MockGroup))
}

func TestMockKernel_DoubleRelease(t *testing.T) {
	m := NewMockKernel(MockSet(10))

	h, err := m.TaskForPID(10)
	require.NoError(t, err)
	require.NoError(t, m.Deallocate(h))

	err = m.Deallocate(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Len(t, m.DoubleReleases(), 1)
}

func TestMockKernel_TaskForPID(t *testing.T) {
	m := NewMockKernel(MockSet(10))

	_, err := m.TaskForPID(99)
	assert.ErrorIs(t, err, ErrDenied)

	m.DirectErr = Fail("task_for_pid", StatusProtectionFailure)
	_, err = m.TaskForPID(10)
	assert.Equal(t, StatusProtectionFailure, StatusOf(err))
	assert.Empty(t, m.Live())
	assert.Len(t, m.Calls, 2)
}

func TestMockKernel_RejectsForeignHandles(t *testing.T) {
	m := NewMockKernel(MockSet(10))

	_, err := m.ProcessorSets(Handle(0x42))
	assert.Error(t, err)

	_, err = m.PIDForTask(Handle(0x42))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
