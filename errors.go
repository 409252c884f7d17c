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

package joinpath

import "github.com/coldb/joinpath/errs"

// Error kinds surfaced to callers of Dispatch. The underlying
// *errors.Kind values live in the leaf package errs so chain and
// planner can return the same sentinels without importing this
// package; these are just the public names.
var (
	// ErrTypeMismatch is SEMANTIC_TYPE_MISMATCH.
	ErrTypeMismatch = errs.ErrTypeMismatch
	// ErrBatAccess is INTERNAL_BAT_ACCESS.
	ErrBatAccess = errs.ErrBatAccess
	// ErrAllocation is ALLOCATION_FAILURE.
	ErrAllocation = errs.ErrAllocation
	// ErrObjCreate is INTERNAL_OBJ_CREATE.
	ErrObjCreate = errs.ErrObjCreate
	// ErrUnknownOp guards an invalid Op value.
	ErrUnknownOp = errs.ErrUnknownOp
)
