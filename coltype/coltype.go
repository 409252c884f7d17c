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

// Package coltype defines the data model consumed by the join-path core:
// the identifier domain, the null sentinel, type tags, and the Column
// capability interface that every other package in this module depends
// on instead of a concrete storage representation.
package coltype

import "math"

// ID is a value in the identifier domain addressed by a column's head
// range. It is also used as the tail element type for every column
// except the terminal projection column in a chain.
type ID int64

// NullID is the sentinel identifier meaning "no match". It is chosen
// outside the non-negative range that head sequences occupy, so it can
// never collide with a real identifier produced by a dense head.
const NullID ID = math.MinInt64

// Kind classifies the element type carried by a column's head or tail.
type Kind int

const (
	// KindVoid is the unit type: values are implied by position and
	// carry no information of their own (a dense seq_base ..
	// seq_base+count-1 sequence).
	KindVoid Kind = iota
	// KindIdentifier values address another column's head range.
	KindIdentifier
	// KindValue values are terminal, arbitrary Go values (the result
	// of a projection column).
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindIdentifier:
		return "identifier"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// TypeTag describes the element type of a column's head or tail. Name
// is only meaningful for KindValue and documents the terminal Go type
// (e.g. "string", "int64") for diagnostics; it plays no role in
// adjacency validation.
type TypeTag struct {
	Kind Kind
	Name string
}

// Void is the well-known void/unit type tag used by every column's
// head except when the head itself addresses identifiers.
var Void = TypeTag{Kind: KindVoid}

// Identifier is the well-known identifier type tag.
var Identifier = TypeTag{Kind: KindIdentifier}

// Value returns a terminal value type tag named name.
func Value(name string) TypeTag {
	return TypeTag{Kind: KindValue, Name: name}
}

// Compatible reports whether a column whose tail carries tail can be
// chained into a column whose head carries head: either the kinds
// match exactly, or one side is the void/unit head and the other is
// an identifier.
func Compatible(tail, head TypeTag) bool {
	if tail.Kind == head.Kind {
		return true
	}
	if tail.Kind == KindVoid && head.Kind == KindIdentifier {
		return true
	}
	if tail.Kind == KindIdentifier && head.Kind == KindVoid {
		return true
	}
	return false
}

// Mode selects how a join-path request composes its operands.
type Mode int

const (
	// FullJoin pairs operands with the general binary-join primitive,
	// choosing whichever adjacent pair is cheapest at each step.
	FullJoin Mode = iota
	// LeftJoin preserves every row of the head-most operand; the
	// first reduction is forced to pair J[0] with J[1].
	LeftJoin
	// Project composes a chain of columns down to a single
	// projection result.
	Project
)

func (m Mode) String() string {
	switch m {
	case FullJoin:
		return "full_join"
	case LeftJoin:
		return "left_join"
	case Project:
		return "project"
	default:
		return "unknown"
	}
}

// Column is the capability surface the join-path core consumes from a
// column store, matching spec section 6.2 exactly: count, head
// addressing, and the logical/physical property predicates the cost
// model and chain evaluator read. No method here mutates the column.
type Column interface {
	// Count returns the number of elements.
	Count() int
	// HeadSeqBase returns the first identifier in the head domain.
	HeadSeqBase() ID
	// HeadType returns the element type of the head.
	HeadType() TypeTag
	// TailType returns the element type of the tail.
	TailType() TypeTag

	// HeadDense reports whether head identifiers are exactly
	// seq_base, seq_base+1, ... (contiguous).
	HeadDense() bool
	// HeadSorted reports whether head identifiers are monotonic.
	// Not listed among spec's essential attributes by name, but
	// required by the cost-model rule table's head_sorted(R) tests;
	// see SPEC_FULL.md's resolved-ambiguity note.
	HeadSorted() bool
	// HeadKey reports whether the head has no duplicate identifiers.
	HeadKey() bool

	// TailDense reports whether the tail is a contiguous identifier
	// sequence (v, v+1, v+2, ...).
	TailDense() bool
	// TailSorted reports whether the tail is non-decreasing.
	TailSorted() bool
	// TailReverseSorted reports whether the tail is non-increasing.
	TailReverseSorted() bool
	// TailKey reports whether the tail has no duplicate values.
	TailKey() bool
	// TailNonNull reports whether no tail element is NullID.
	TailNonNull() bool

	// TailID reads the tail element at offset (already normalized:
	// identifier - HeadSeqBase of the column being read) as an
	// identifier. Valid only when TailType().Kind == KindIdentifier
	// or KindVoid.
	TailID(offset int) ID
	// TailValue reads the tail element at offset as an arbitrary
	// terminal value. Valid only when TailType().Kind == KindValue.
	TailValue(offset int) interface{}
}

// MutableColumn is the write side of Column, produced by allocating an
// output column (spec 6.2's allocate_output) and appended to row by
// row by the chain evaluator. Freeze yields the immutable Column that
// gets registered with the store.
type MutableColumn interface {
	Column

	// AppendID appends an identifier tail value.
	AppendID(v ID)
	// AppendValue appends a terminal tail value.
	AppendValue(v interface{})

	// SetHead sets the head base and density of the output (the
	// chain evaluator always produces a dense void head).
	SetHead(seqBase ID)
	// InheritTailProperties copies the conservative subsequence-safe
	// tail properties (sorted, reverse-sorted, key, non-null) from a
	// source column. See chain package for when this is provably
	// correct rather than a blind copy.
	InheritTailProperties(sorted, reverseSorted, key, nonNull bool)

	// Freeze finalizes the column, making it safe to read through
	// the Column interface and ineligible for further appends.
	Freeze() Column
}
