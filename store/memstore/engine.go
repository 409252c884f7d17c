// Copyright 2024 The ColDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memstore

import (
	"sync"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/store"
)

// ErrColumnNotFound is returned by Acquire when the handle does not
// name a live column.
var ErrColumnNotFound = goerrors.NewKind("memstore: column %d not found")

type entry struct {
	col      *Column
	refcount int
}

// Engine is a reference store.Engine backed by a plain map, guarded by
// a mutex so concurrent dispatches sharing columns are safe (spec.md
// section 5: "the storage collaborator's reference-counting is
// thread-safe").
type Engine struct {
	mu      sync.Mutex
	cols    map[store.Handle]*entry
	next    store.Handle
	cleared int // number of ClearError calls observed; no accessor reads it
	fail    failureHook
}

var _ store.Engine = (*Engine)(nil)

// New returns an empty Engine.
func New() *Engine {
	return &Engine{cols: make(map[store.Handle]*entry)}
}

// Put registers col with an initial reference count of refs, for test
// and fixture setup (the caller gets back the handle to pass into a
// join-path request).
func (e *Engine) Put(col *Column, refs int) store.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := e.next
	e.cols[h] = &entry{col: col, refcount: refs}
	return h
}

// Acquire implements store.Engine.
func (e *Engine) Acquire(id store.Handle) (coltype.Column, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.cols[id]
	if !ok {
		return nil, ErrColumnNotFound.New(int64(id))
	}
	ent.refcount++
	return ent.col, nil
}

// Release implements store.Engine.
func (e *Engine) Release(id store.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.cols[id]
	if !ok {
		return
	}
	ent.refcount--
	if ent.refcount <= 0 {
		delete(e.cols, id)
	}
}

// Register implements store.Engine.
func (e *Engine) Register(c coltype.Column) store.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := e.next
	e.cols[h] = &entry{col: c.(*Column), refcount: 1}
	return h
}

// MarkReadonly implements store.Engine.
func (e *Engine) MarkReadonly(c coltype.Column) {
	if mc, ok := c.(*Column); ok {
		mc.frozen = true
	}
}

// AllocateOutput implements store.Engine.
func (e *Engine) AllocateOutput(headType, tailType coltype.TypeTag, capacity int) (coltype.MutableColumn, error) {
	if capacity < 0 {
		capacity = 0
	}
	c := NewDense(0, tailType, capacity)
	c.headType = headType
	return c, nil
}

// ClearError implements store.Engine.
func (e *Engine) ClearError() {
	e.mu.Lock()
	e.cleared++
	e.mu.Unlock()
}

// RefCount returns the current reference count held on id, or 0 if
// the handle is unknown (already fully released). Test-only
// introspection for property P1.
func (e *Engine) RefCount(id store.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ent, ok := e.cols[id]
	if !ok {
		return 0
	}
	return ent.refcount
}

// Live returns the number of distinct handles still holding at least
// one reference. Test-only introspection for leak detection.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cols)
}

func asColumn(c coltype.Column) *Column {
	return c.(*Column)
}
