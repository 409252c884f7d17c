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

// Package store declares the exact capability set the join-path core
// consumes from a column store and its operator primitives (spec.md
// section 6.2). The core never depends on a concrete storage type,
// only on the Engine interface; store/memstore is one reference
// implementation used by this module's own tests and demo command.
package store

import "github.com/coldb/joinpath/coltype"

// Handle is an opaque, stable identifier for a registered column, as
// returned by Engine.Register and consumed by Engine.Acquire.
type Handle int64

// Ref pairs a handle with the column it already resolves to, the
// shape the dispatcher hands to the chain evaluator and the planner
// once it has acquired every input: a single acquire/release cycle
// per input column, done once by the caller of chain.Walk/
// planner.Reduce rather than redundantly by each.
type Ref struct {
	Handle Handle
	Col    coltype.Column
}

// Engine is the storage collaborator capability surface of spec.md
// section 6.2.
type Engine interface {
	// Acquire resolves id into a reference-counted column handle. It
	// returns an error if id does not name a live column.
	Acquire(id Handle) (coltype.Column, error)
	// Release drops one reference to id, freeing the column when the
	// count reaches zero.
	Release(id Handle)
	// Register publishes a freshly produced column and returns a
	// stable identifier for it, holding exactly one reference on
	// behalf of the caller.
	Register(c coltype.Column) Handle
	// MarkReadonly hints that c is immutable from this point on.
	MarkReadonly(c coltype.Column)

	// AllocateOutput allocates a fresh, appendable column for the
	// chain evaluator (spec.md section 4.2), with the given head/tail
	// types and an advisory initial capacity.
	AllocateOutput(headType, tailType coltype.TypeTag, capacity int) (coltype.MutableColumn, error)

	// FullJoin invokes the general binary-join primitive. hintCap is
	// advisory (min(count(l), count(r))). A nil, nil return is a
	// recoverable per-step failure per spec.md section 4.3.
	FullJoin(l, r coltype.Column, hintCap int) (coltype.Column, error)
	// LeftJoin invokes the left-join primitive, whose result must be
	// sorted with respect to l's head. hintCap is advisory
	// (count(l)).
	LeftJoin(l, r coltype.Column, hintCap int) (coltype.Column, error)
	// Project invokes the projection primitive.
	Project(l, r coltype.Column) (coltype.Column, error)

	// ClearError resets any latched per-thread error buffer. Called
	// by the planner only, after a recoverable failure, before
	// retrying with a different pairing.
	ClearError()
}
