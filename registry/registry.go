// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package registry tracks the kernel handles and arrays acquired while
// resolving a task, so that each one is released exactly once.
//
// NOTE: Entries live only for one acquisition run. Nothing is shared across
// runs and the registry is not safe for concurrent use.
package registry

import (
	"errors"
	"fmt"
	"maps"

	"github.com/jongio/taskport/kernel"
	"github.com/jongio/taskport/logutil"
)

// Kind names the role a tracked resource plays in the acquisition chain.
type Kind string

const (
	KindHost      Kind = "host"
	KindGroup     Kind = "group"
	KindGroupPriv Kind = "group-priv"
	KindTask      Kind = "task"
	KindGroupList Kind = "group-list"
	KindTaskList  Kind = "task-list"
)

type state int

const (
	held state = iota
	released
	transferred
)

// Stats counts registry traffic by kind.
type Stats struct {
	Acquired    map[Kind]int `json:"acquired"`
	Released    map[Kind]int `json:"released"`
	Transferred map[Kind]int `json:"transferred,omitempty"`
}

func newStats() *Stats {
	return &Stats{
		Acquired:    make(map[Kind]int),
		Released:    make(map[Kind]int),
		Transferred: make(map[Kind]int),
	}
}

// Outstanding returns acquisitions of kind not yet released or transferred.
func (s Stats) Outstanding(kind Kind) int {
	return s.Acquired[kind] - s.Released[kind] - s.Transferred[kind]
}

// Entry is one tracked handle or array.
type Entry struct {
	Kind   Kind
	Handle kernel.Handle
	Array  *kernel.Array

	state state
	owner *Registry
}

// Held reports whether the entry still owns its resource.
func (e *Entry) Held() bool {
	return e.state == held
}

// Release returns the resource to the kernel. A released or transferred entry
// is never released again, and a failed release is not retried.
func (e *Entry) Release() error {
	if e.state != held {
		return nil
	}
	e.state = released
	e.owner.stats.Released[e.Kind]++

	var err error
	if e.Array != nil {
		err = e.owner.kernel.DeallocateArray(e.Array)
	} else {
		err = e.owner.kernel.Deallocate(e.Handle)
	}
	if err != nil {
		logutil.Warn("failed to release kernel resource", "kind", e.Kind, "handle", e.Handle, "error", err)
		return fmt.Errorf("release %s %s: %w", e.Kind, e.Handle, err)
	}
	logutil.Debug("released kernel resource", "kind", e.Kind, "handle", e.Handle)
	return nil
}

// Transfer hands the handle to the caller, who becomes responsible for
// releasing it. It returns kernel.Null if the entry no longer owns a handle.
func (e *Entry) Transfer() kernel.Handle {
	if e.state != held || e.Array != nil {
		return kernel.Null
	}
	e.state = transferred
	e.owner.stats.Transferred[e.Kind]++
	logutil.Debug("transferred kernel handle", "kind", e.Kind, "handle", e.Handle)
	return e.Handle
}

// Registry owns the resources acquired in one scope.
type Registry struct {
	kernel  kernel.Kernel
	entries []*Entry
	stats   *Stats
}

// New creates an empty registry releasing through k.
func New(k kernel.Kernel) *Registry {
	return &Registry{
		kernel: k,
		stats:  newStats(),
	}
}

// Scope returns a child registry sharing this registry's kernel and stats.
// Closing the child releases only the entries tracked through it.
func (r *Registry) Scope() *Registry {
	return &Registry{
		kernel: r.kernel,
		stats:  r.stats,
	}
}

// TrackHandle takes ownership of h. Null handles are not tracked.
func (r *Registry) TrackHandle(kind Kind, h kernel.Handle) *Entry {
	e := &Entry{Kind: kind, Handle: h, owner: r}
	if h.IsNull() {
		e.state = released
		return e
	}
	r.entries = append(r.entries, e)
	r.stats.Acquired[kind]++
	return e
}

// TrackArray takes ownership of the allocation backing a. The handles stored
// in a are not tracked; use TrackHandle for each one the caller owns.
func (r *Registry) TrackArray(kind Kind, a *kernel.Array) *Entry {
	e := &Entry{Kind: kind, Array: a, owner: r}
	if a == nil {
		e.state = released
		return e
	}
	r.entries = append(r.entries, e)
	r.stats.Acquired[kind]++
	return e
}

// Held returns the number of entries in this scope that still own a resource.
func (r *Registry) Held() int {
	n := 0
	for _, e := range r.entries {
		if e.Held() {
			n++
		}
	}
	return n
}

// Close releases every held entry in reverse acquisition order and reports
// all release failures. Calling Close again is a no-op.
func (r *Registry) Close() error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		if err := r.entries[i].Release(); err != nil {
			errs = append(errs, err)
		}
	}
	r.entries = nil
	return errors.Join(errs...)
}

// Stats returns a snapshot of the counters shared by this registry and its scopes.
func (r *Registry) Stats() Stats {
	return Stats{
		Acquired:    maps.Clone(r.stats.Acquired),
		Released:    maps.Clone(r.stats.Released),
		Transferred: maps.Clone(r.stats.Transferred),
	}
}
