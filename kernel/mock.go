// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package kernel

import (
	"fmt"
	"sort"
)

// Resource kinds tracked by MockKernel.
const (
	MockHost      = "host"
	MockGroup     = "group"
	MockGroupPriv = "group-priv"
	MockTask      = "task"
	MockGroupList = "group-list"
	MockTaskList  = "task-list"
)

// MockProcess is one task inside a MockProcessorSet.
type MockProcess struct {
	PID int
	// PIDErr makes PIDForTask fail for this task.
	PIDErr error
}

// MockProcessorSet is one processor set exposed by MockKernel.
type MockProcessorSet struct {
	Tasks []MockProcess
	// PrivErr makes ProcessorSetPriv fail for this set.
	PrivErr error
	// TasksErr makes ProcessorSetTasks fail for this set.
	TasksErr error
}

// MockKernel is an in-memory Kernel used in tests.
// It is not safe for concurrent use.
type MockKernel struct {
	Sets []MockProcessorSet

	// DirectErr makes TaskForPID fail regardless of the target.
	DirectErr error
	// HostErr makes HostPrivPort fail.
	HostErr error
	// SetsErr makes ProcessorSets fail.
	SetsErr error

	// Calls records every kernel call in order.
	Calls []string

	next      Handle
	nextAddr  uint64
	live      map[Handle]string
	liveArr   map[uint64]string
	setIndex  map[Handle]int
	taskPID   map[Handle]MockProcess
	acquired  map[string]int
	released  map[string]int
	doubleRel []string
}

// NewMockKernel returns a MockKernel exposing the given processor sets.
func NewMockKernel(sets ...MockProcessorSet) *MockKernel {
	return &MockKernel{
		Sets:     sets,
		next:     0x100,
		nextAddr: 0x7000_0000,
		live:     make(map[Handle]string),
		liveArr:  make(map[uint64]string),
		setIndex: make(map[Handle]int),
		taskPID:  make(map[Handle]MockProcess),
		acquired: make(map[string]int),
		released: make(map[string]int),
	}
}

// MockSet builds a processor set whose tasks have the given pids.
func MockSet(pids ...int) MockProcessorSet {
	set := MockProcessorSet{}
	for _, pid := range pids {
		set.Tasks = append(set.Tasks, MockProcess{PID: pid})
	}
	return set
}

// Fail builds the error a real kernel returns for op.
func Fail(op string, code Status) error {
	return &Error{Op: op, Code: code}
}

func (m *MockKernel) issue(kind string) Handle {
	m.next += 4
	m.live[m.next] = kind
	m.acquired[kind]++
	return m.next
}

func (m *MockKernel) issueArray(kind string, handles []Handle) *Array {
	m.nextAddr += 0x1000
	m.liveArr[m.nextAddr] = kind
	m.acquired[kind]++
	return &Array{Handles: handles, addr: m.nextAddr, size: uint64(len(handles)) * 4}
}

func (m *MockKernel) record(format string, args ...any) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *MockKernel) TaskForPID(pid int) (Handle, error) {
	m.record("task_for_pid(%d)", pid)
	if m.DirectErr != nil {
		return Null, m.DirectErr
	}
	for _, set := range m.Sets {
		for _, p := range set.Tasks {
			if p.PID == pid {
				h := m.issue(MockTask)
				m.taskPID[h] = p
				return h, nil
			}
		}
	}
	return Null, Fail("task_for_pid", StatusFailure)
}

func (m *MockKernel) HostPrivPort() (Handle, error) {
	m.record("host_get_host_priv_port")
	if m.HostErr != nil {
		return Null, m.HostErr
	}
	return m.issue(MockHost), nil
}

func (m *MockKernel) ProcessorSets(host Handle) (*Array, error) {
	m.record("host_processor_sets(%s)", host)
	if m.live[host] != MockHost {
		return nil, Fail("host_processor_sets", StatusInvalidArgument)
	}
	if m.SetsErr != nil {
		return nil, m.SetsErr
	}
	names := make([]Handle, len(m.Sets))
	for i := range m.Sets {
		names[i] = m.issue(MockGroup)
		m.setIndex[names[i]] = i
	}
	return m.issueArray(MockGroupList, names), nil
}

func (m *MockKernel) ProcessorSetPriv(host, set Handle) (Handle, error) {
	m.record("host_processor_set_priv(%s, %s)", host, set)
	idx, ok := m.setIndex[set]
	if m.live[host] != MockHost || !ok || m.live[set] != MockGroup {
		return Null, Fail("host_processor_set_priv", StatusInvalidArgument)
	}
	if err := m.Sets[idx].PrivErr; err != nil {
		return Null, err
	}
	priv := m.issue(MockGroupPriv)
	m.setIndex[priv] = idx
	return priv, nil
}

func (m *MockKernel) ProcessorSetTasks(set Handle) (*Array, error) {
	m.record("processor_set_tasks(%s)", set)
	idx, ok := m.setIndex[set]
	if !ok || m.live[set] != MockGroupPriv {
		return nil, Fail("processor_set_tasks", StatusInvalidArgument)
	}
	if err := m.Sets[idx].TasksErr; err != nil {
		return nil, err
	}
	tasks := make([]Handle, len(m.Sets[idx].Tasks))
	for i, p := range m.Sets[idx].Tasks {
		tasks[i] = m.issue(MockTask)
		m.taskPID[tasks[i]] = p
	}
	return m.issueArray(MockTaskList, tasks), nil
}

func (m *MockKernel) PIDForTask(task Handle) (int, error) {
	m.record("pid_for_task(%s)", task)
	p, ok := m.taskPID[task]
	if !ok || m.live[task] != MockTask {
		return 0, Fail("pid_for_task", StatusInvalidName)
	}
	if p.PIDErr != nil {
		return 0, p.PIDErr
	}
	return p.PID, nil
}

func (m *MockKernel) Deallocate(h Handle) error {
	m.record("mach_port_deallocate(%s)", h)
	if h.IsNull() {
		return nil
	}
	kind, ok := m.live[h]
	if !ok {
		m.doubleRel = append(m.doubleRel, h.String())
		return Fail("mach_port_deallocate", StatusInvalidName)
	}
	delete(m.live, h)
	m.released[kind]++
	return nil
}

func (m *MockKernel) DeallocateArray(a *Array) error {
	if a == nil {
		return nil
	}
	m.record("vm_deallocate(0x%x)", a.addr)
	kind, ok := m.liveArr[a.addr]
	if !ok {
		m.doubleRel = append(m.doubleRel, fmt.Sprintf("array 0x%x", a.addr))
		return Fail("vm_deallocate", StatusInvalidAddress)
	}
	delete(m.liveArr, a.addr)
	m.released[kind]++
	return nil
}

// Acquired returns how many resources of kind the kernel has issued.
func (m *MockKernel) Acquired(kind string) int {
	return m.acquired[kind]
}

// Released returns how many resources of kind have been released.
func (m *MockKernel) Released(kind string) int {
	return m.released[kind]
}

// Live lists the resources still held by the caller, sorted.
func (m *MockKernel) Live() []string {
	out := make([]string, 0, len(m.live)+len(m.liveArr))
	for h, kind := range m.live {
		out = append(out, kind+" "+h.String())
	}
	for addr, kind := range m.liveArr {
		out = append(out, fmt.Sprintf("%s 0x%x", kind, addr))
	}
	sort.Strings(out)
	return out
}

// IsLive reports whether h has been issued and not yet released.
func (m *MockKernel) IsLive(h Handle) bool {
	_, ok := m.live[h]
	return ok
}

// DoubleReleases lists handles or arrays released when not held.
func (m *MockKernel) DoubleReleases() []string {
	return m.doubleRel
}
