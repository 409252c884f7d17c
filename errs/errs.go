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

// Package errs holds the join-path core's error kinds (spec.md section
// 7), as a leaf package so chain, planner and the root dispatcher can
// all return the same sentinel kinds without an import cycle.
package errs

import goerrors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrTypeMismatch is SEMANTIC_TYPE_MISMATCH: adjacent columns'
	// head/tail types are incompatible.
	ErrTypeMismatch = goerrors.NewKind("joinpath: type mismatch at step %d: tail type %v incompatible with head type %v")
	// ErrBatAccess is INTERNAL_BAT_ACCESS: an input identifier could
	// not be acquired from the storage collaborator.
	ErrBatAccess = goerrors.NewKind("joinpath: could not acquire column handle %d")
	// ErrAllocation is ALLOCATION_FAILURE: the planner's or chain
	// evaluator's own bookkeeping or output column could not be
	// allocated.
	ErrAllocation = goerrors.NewKind("joinpath: allocation failure: %s")
	// ErrObjCreate is INTERNAL_OBJ_CREATE: all retry strategies were
	// exhausted without producing a result column.
	ErrObjCreate = goerrors.NewKind("joinpath: no result column produced after %d step(s)")
	// ErrUnknownOp guards Dispatch's op switch; not one of spec.md
	// section 7's four codes since a valid caller can never hit it.
	ErrUnknownOp = goerrors.NewKind("joinpath: unknown op %v")
)
