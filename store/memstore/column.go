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

// Package memstore is a reference, in-process implementation of
// store.Engine. It is not a general-purpose column store: no
// compression, no disk spill, no secondary indexes, no persistence
// (spec.md section 6.3 keeps the core itself stateless). It exists so
// this module's own tests and its demo command have a concrete
// collaborator to exercise cost, chain, planner and the dispatcher
// against.
package memstore

import "github.com/coldb/joinpath/coltype"

// Column is the concrete column representation memstore hands out
// through the coltype.Column/MutableColumn interfaces. Its head can
// be either dense-void (headIDs is nil, rows addressed positionally)
// or a materialized vector of identifiers (the shape a join primitive
// produces when it selects a subset of rows) — that distinction never
// crosses the coltype.Column boundary, only the density predicate
// does.
type Column struct {
	headSeqBase coltype.ID
	headType    coltype.TypeTag
	headDense   bool
	headSorted  bool
	headKey     bool
	headIDs     []coltype.ID // only set when !headDense

	tailType          coltype.TypeTag
	tailIDs           []coltype.ID
	tailValues        []interface{}
	tailDense         bool
	tailSorted        bool
	tailReverseSorted bool
	tailKey           bool
	tailNonNull       bool

	frozen bool
}

var _ coltype.Column = (*Column)(nil)
var _ coltype.MutableColumn = (*Column)(nil)

// NewDense constructs a column with a dense void head starting at
// seqBase, ready to be appended to and then Frozen.
func NewDense(seqBase coltype.ID, tailType coltype.TypeTag, capacity int) *Column {
	c := &Column{
		headSeqBase: seqBase,
		headType:    coltype.Void,
		headDense:   true,
		tailType:    tailType,
	}
	if tailType.Kind == coltype.KindValue {
		c.tailValues = make([]interface{}, 0, capacity)
	} else {
		c.tailIDs = make([]coltype.ID, 0, capacity)
	}
	return c
}

// Count implements coltype.Column.
func (c *Column) Count() int {
	if c.tailType.Kind == coltype.KindValue {
		return len(c.tailValues)
	}
	return len(c.tailIDs)
}

// HeadSeqBase implements coltype.Column.
func (c *Column) HeadSeqBase() coltype.ID { return c.headSeqBase }

// HeadType implements coltype.Column.
func (c *Column) HeadType() coltype.TypeTag { return c.headType }

// TailType implements coltype.Column.
func (c *Column) TailType() coltype.TypeTag { return c.tailType }

// HeadDense implements coltype.Column.
func (c *Column) HeadDense() bool { return c.headDense }

// HeadSorted implements coltype.Column.
func (c *Column) HeadSorted() bool { return c.headSorted }

// HeadKey implements coltype.Column.
func (c *Column) HeadKey() bool { return c.headKey }

// TailDense implements coltype.Column.
func (c *Column) TailDense() bool { return c.tailDense }

// TailSorted implements coltype.Column.
func (c *Column) TailSorted() bool { return c.tailSorted }

// TailReverseSorted implements coltype.Column.
func (c *Column) TailReverseSorted() bool { return c.tailReverseSorted }

// TailKey implements coltype.Column.
func (c *Column) TailKey() bool { return c.tailKey }

// TailNonNull implements coltype.Column.
func (c *Column) TailNonNull() bool { return c.tailNonNull }

// TailID implements coltype.Column.
func (c *Column) TailID(offset int) coltype.ID { return c.tailIDs[offset] }

// TailValue implements coltype.Column.
func (c *Column) TailValue(offset int) interface{} {
	if c.tailType.Kind == coltype.KindValue {
		return c.tailValues[offset]
	}
	return c.tailIDs[offset]
}

// headAt returns the head identifier at row i, whether the head is
// dense-void or a materialized identifier vector. Internal only: the
// coltype.Column boundary never exposes head values, only predicates
// about them (spec.md section 6.2).
func (c *Column) headAt(i int) coltype.ID {
	if c.headDense {
		return c.headSeqBase + coltype.ID(i)
	}
	return c.headIDs[i]
}

// AppendID implements coltype.MutableColumn.
func (c *Column) AppendID(v coltype.ID) {
	c.tailIDs = append(c.tailIDs, v)
}

// AppendValue implements coltype.MutableColumn.
func (c *Column) AppendValue(v interface{}) {
	c.tailValues = append(c.tailValues, v)
}

// SetHead implements coltype.MutableColumn.
func (c *Column) SetHead(seqBase coltype.ID) {
	c.headSeqBase = seqBase
	c.headDense = true
	c.headType = coltype.Void
	c.headIDs = nil
}

// appendHeadID records a non-dense head value; used internally by the
// join primitives when the surviving rows are not contiguous.
func (c *Column) appendHeadID(v coltype.ID) {
	c.headDense = false
	c.headType = coltype.Identifier
	c.headIDs = append(c.headIDs, v)
}

// InheritTailProperties implements coltype.MutableColumn.
func (c *Column) InheritTailProperties(sorted, reverseSorted, key, nonNull bool) {
	c.tailSorted = sorted
	c.tailReverseSorted = reverseSorted
	c.tailKey = key
	c.tailNonNull = nonNull
}

// Freeze implements coltype.MutableColumn.
func (c *Column) Freeze() coltype.Column {
	c.frozen = true
	return c
}
