// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package taskport

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
	"github.com/jongio/taskport/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var denied = kernel.Fail("test", kernel.StatusNoAccess)

// assertBalanced checks that every resource the kernel issued was released
// exactly once, except a found task handle, which must still be live.
func assertBalanced(t *testing.T, k *kernel.MockKernel, res Result) {
	t.Helper()

	assert.Empty(t, k.DoubleReleases(), "double releases")

	for _, kind := range []string{kernel.MockHost, kernel.MockGroup, kernel.MockGroupPriv, kernel.MockGroupList, kernel.MockTaskList} {
		assert.Equal(t, k.Acquired(kind), k.Released(kind), "kind %s", kind)
	}

	if res.Found() {
		assert.Equal(t, k.Acquired(kernel.MockTask)-1, k.Released(kernel.MockTask), "task handles")
		assert.Equal(t, []string{"task " + res.Handle.String()}, k.Live())
	} else {
		assert.Equal(t, k.Acquired(kernel.MockTask), k.Released(kernel.MockTask), "task handles")
		assert.Empty(t, k.Live())
	}

	for _, kind := range []registry.Kind{registry.KindHost, registry.KindGroup, registry.KindGroupPriv, registry.KindGroupList, registry.KindTaskList, registry.KindTask} {
		assert.Equal(t, 0, res.Handles.Outstanding(kind), "registry outstanding %s", kind)
	}
}

func countCalls(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestEnumerator_FoundInLaterGroup(t *testing.T) {
	k := kernel.NewMockKernel(
		kernel.MockSet(100, 101),
		kernel.MockSet(200, 201),
		kernel.MockSet(300, 4321, 302),
	)

	res := NewEnumerator(k).Acquire(4321)

	require.Equal(t, OutcomeFound, res.Outcome)
	assert.True(t, res.Found())
	assert.Equal(t, 2, res.Group)
	assert.Empty(t, res.Skipped)

	pid, err := k.PIDForTask(res.Handle)
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)

	// groups 0 and 1 fully released, group 2's other two tasks released
	assert.Equal(t, 6, k.Released(kernel.MockTask))
	assert.Equal(t, 3, k.Released(kernel.MockGroupPriv))
	assert.Equal(t, 3, k.Released(kernel.MockTaskList))
	assert.Equal(t, 1, k.Released(kernel.MockHost))
	assert.Equal(t, 1, res.Handles.Transferred[registry.KindTask])
	assertBalanced(t, k, res)

	// scanning stops at the match: 302 is never resolved
	assert.Equal(t, 2+2+2, countCalls(k.Calls, "pid_for_task"))

	require.NoError(t, k.Deallocate(res.Handle))
	assert.Empty(t, k.Live())
}

func TestEnumerator_ReleasesGroupBeforeNextGroup(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(100, 101), kernel.MockSet(4321))

	res := NewEnumerator(k).Acquire(4321)
	require.True(t, res.Found())

	second := -1
	for i, c := range k.Calls {
		if strings.HasPrefix(c, "host_processor_set_priv") {
			second = i
		}
	}
	require.Positive(t, second)

	before := k.Calls[:second]
	// two task handles and the set's privileged handle, plus the task list
	assert.Equal(t, 3, countCalls(before, "mach_port_deallocate"))
	assert.Equal(t, 1, countCalls(before, "vm_deallocate"))
}

func TestEnumerator_NotFound(t *testing.T) {
	k := kernel.NewMockKernel(
		kernel.MockSet(100, 101),
		kernel.MockSet(200, 201),
		kernel.MockSet(300, 301),
	)

	res := NewEnumerator(k).Acquire(4321)

	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Equal(t, KindNotFound, res.Kind())
	assert.Equal(t, kernel.Null, res.Handle)
	assert.Equal(t, -1, res.Group)
	assert.Nil(t, res.Err)

	assert.Equal(t, 6, k.Released(kernel.MockTask))
	assert.Equal(t, 3, k.Released(kernel.MockGroupPriv))
	assert.Equal(t, 1, k.Released(kernel.MockHost))
	assertBalanced(t, k, res)
}

func TestEnumerator_ZeroGroups(t *testing.T) {
	k := kernel.NewMockKernel()

	res := NewEnumerator(k).Acquire(4321)

	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Equal(t, 1, k.Released(kernel.MockGroupList))
	assert.Equal(t, 1, k.Released(kernel.MockHost))
	assertBalanced(t, k, res)
}

func TestEnumerator_EmptyGroup(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(), kernel.MockSet(4321))

	res := NewEnumerator(k).Acquire(4321)

	require.True(t, res.Found())
	assert.Equal(t, 1, res.Group)
	assert.Equal(t, 2, k.Released(kernel.MockTaskList))
	assertBalanced(t, k, res)
}

func TestEnumerator_DuplicateAcrossGroupsReturnsFirst(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(4321), kernel.MockSet(4321))

	res := NewEnumerator(k).Acquire(4321)

	require.True(t, res.Found())
	assert.Equal(t, 0, res.Group)
	assert.Equal(t, 1, k.Acquired(kernel.MockGroupPriv), "second group must not be scanned")
	assertBalanced(t, k, res)
}

func TestEnumerator_HostPrivilegeDenied(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(4321))
	k.HostErr = denied

	res := NewEnumerator(k).Acquire(4321)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, KindHostPrivilegeDenied, res.Kind())
	assert.Equal(t, kernel.StatusNoAccess, res.Status())
	assert.ErrorIs(t, res.Err, ErrHostPrivilegeDenied)
	assert.ErrorIs(t, res.Err, kernel.ErrDenied)
	assert.Equal(t, []string{"host_get_host_priv_port"}, k.Calls, "nothing further is attempted")
	assertBalanced(t, k, res)
}

func TestEnumerator_GroupEnumerationFailed(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockSet(4321))
	k.SetsErr = kernel.Fail("host_processor_sets", kernel.StatusFailure)

	res := NewEnumerator(k).Acquire(4321)

	assert.Equal(t, KindGroupEnumerationFailed, res.Kind())
	assert.ErrorIs(t, res.Err, ErrGroupEnumerationFailed)
	assert.Equal(t, 1, k.Released(kernel.MockHost))
	assertBalanced(t, k, res)
}

func TestEnumerator_PerGroupFailureDoesNotStopScan(t *testing.T) {
	tests := []struct {
		name string
		set  kernel.MockProcessorSet
		kind ErrorKind
	}{
		{
			name: "priv denied",
			set:  kernel.MockProcessorSet{Tasks: []kernel.MockProcess{{PID: 100}}, PrivErr: denied},
			kind: KindPerGroupAccessDenied,
		},
		{
			name: "task list failed",
			set:  kernel.MockProcessorSet{Tasks: []kernel.MockProcess{{PID: 100}}, TasksErr: kernel.Fail("processor_set_tasks", kernel.StatusFailure)},
			kind: KindTaskListFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := kernel.NewMockKernel(kernel.MockSet(10), tt.set, kernel.MockSet(4321))

			res := NewEnumerator(k).Acquire(4321)

			require.True(t, res.Found())
			assert.Equal(t, 2, res.Group)
			require.Len(t, res.Skipped, 1)
			assert.Equal(t, 1, res.Skipped[0].Index)
			assert.Equal(t, tt.kind, res.Skipped[0].Kind)
			assert.True(t, tt.kind.Recoverable())
			assert.ErrorIs(t, res.Skipped[0].Err, tt.kind.Err())
			assertBalanced(t, k, res)
		})
	}
}

func TestEnumerator_PerGroupFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logutil.SetupLoggerWithWriter(&buf, false, false)
	defer logutil.SetupLogger(false, false)

	k := kernel.NewMockKernel(kernel.MockProcessorSet{PrivErr: denied}, kernel.MockSet(4321))
	res := NewEnumerator(k).Acquire(4321)

	require.True(t, res.Found())
	output := buf.String()
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "group=0")
	assert.Contains(t, output, "status=KERN_NO_ACCESS")
}

func TestEnumerator_PIDLookupFailureIsNonMatching(t *testing.T) {
	k := kernel.NewMockKernel(kernel.MockProcessorSet{Tasks: []kernel.MockProcess{
		{PID: 4321, PIDErr: kernel.Fail("pid_for_task", kernel.StatusInvalidArgument)},
		{PID: 4321},
	}})

	res := NewEnumerator(k).Acquire(4321)

	require.True(t, res.Found())
	pid, err := k.PIDForTask(res.Handle)
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)
	assertBalanced(t, k, res)
}

// Fault injection at every single step must leave nothing leaked and
// nothing released twice, with the target in the middle group.
func TestEnumerator_SingleFaultInjection(t *testing.T) {
	const target = 4321
	build := func() *kernel.MockKernel {
		return kernel.NewMockKernel(
			kernel.MockSet(100, 101),
			kernel.MockSet(200, target, 202),
			kernel.MockSet(300, 301),
		)
	}

	type fault struct {
		name   string
		inject func(k *kernel.MockKernel)
		want   Outcome
	}
	faults := []fault{
		{"none", func(k *kernel.MockKernel) {}, OutcomeFound},
		{"host", func(k *kernel.MockKernel) { k.HostErr = denied }, OutcomeFailed},
		{"sets", func(k *kernel.MockKernel) { k.SetsErr = denied }, OutcomeFailed},
	}
	for i := 0; i < 3; i++ {
		want := OutcomeFound
		if i == 1 {
			want = OutcomeNotFound
		}
		faults = append(faults,
			fault{fmt.Sprintf("priv %d", i), func(k *kernel.MockKernel) { k.Sets[i].PrivErr = denied }, want},
			fault{fmt.Sprintf("tasks %d", i), func(k *kernel.MockKernel) { k.Sets[i].TasksErr = denied }, want},
		)
		for j := range 3 {
			if i != 1 && j == 2 {
				continue
			}
			want := OutcomeFound
			if i == 1 && j == 1 {
				want = OutcomeNotFound
			}
			faults = append(faults, fault{
				fmt.Sprintf("pid %d/%d", i, j),
				func(k *kernel.MockKernel) { k.Sets[i].Tasks[j].PIDErr = denied },
				want,
			})
		}
	}

	for _, f := range faults {
		t.Run(f.name, func(t *testing.T) {
			k := build()
			f.inject(k)

			res := NewEnumerator(k).Acquire(target)

			assert.Equal(t, f.want, res.Outcome)
			assertBalanced(t, k, res)
			if res.Found() {
				require.NoError(t, k.Deallocate(res.Handle))
				assert.Empty(t, k.Live())
			}
		})
	}
}
