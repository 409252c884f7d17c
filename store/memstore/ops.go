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

import "github.com/coldb/joinpath/coltype"

// indexHead builds a position index over r's head values, the way an
// external hash-join primitive would. Internal only.
func indexHead(r *Column) map[coltype.ID]int {
	idx := make(map[coltype.ID]int, r.Count())
	for i := 0; i < r.Count(); i++ {
		idx[r.headAt(i)] = i
	}
	return idx
}

func copyTailInto(out *Column, src *Column, pos int) {
	if src.tailType.Kind == coltype.KindValue {
		out.AppendValue(src.TailValue(pos))
	} else {
		out.AppendID(src.TailID(pos))
	}
}

// FullJoin implements store.Engine: an inner equality join on l's
// tail identifiers against r's head domain. Non-matching rows
// (including a NullID tail) are dropped.
func (e *Engine) FullJoin(l, r coltype.Column, hintCap int) (coltype.Column, error) {
	if f := e.fail; f != nil && f("full_join", l, r) {
		return nil, nil
	}
	lm, rm := asColumn(l), asColumn(r)
	idx := indexHead(rm)
	out := NewDense(0, rm.tailType, max(hintCap, 0))
	for i := 0; i < lm.Count(); i++ {
		v := lm.TailID(i)
		if v == coltype.NullID {
			continue
		}
		pos, ok := idx[v]
		if !ok {
			continue
		}
		out.appendHeadID(lm.headAt(i))
		copyTailInto(out, rm, pos)
	}
	out.tailNonNull = true
	return out, nil
}

// LeftJoin implements store.Engine: preserves every row of l's head;
// unmatched rows (including a NullID tail) get a NullID/zero tail.
// The result is always sorted with respect to l's head because row
// order and identity are preserved 1:1.
func (e *Engine) LeftJoin(l, r coltype.Column, hintCap int) (coltype.Column, error) {
	if f := e.fail; f != nil && f("left_join", l, r) {
		return nil, nil
	}
	lm, rm := asColumn(l), asColumn(r)
	idx := indexHead(rm)
	out := NewDense(lm.headSeqBase, rm.tailType, max(hintCap, lm.Count()))
	out.headDense = lm.headDense
	out.headIDs = lm.headIDs
	out.headType = lm.headType
	allMatched := true
	for i := 0; i < lm.Count(); i++ {
		v := lm.TailID(i)
		var pos int
		var ok bool
		if v != coltype.NullID {
			pos, ok = idx[v]
		}
		if !ok {
			allMatched = false
			if rm.tailType.Kind == coltype.KindValue {
				out.AppendValue(nil)
			} else {
				out.AppendID(coltype.NullID)
			}
			continue
		}
		copyTailInto(out, rm, pos)
	}
	out.tailNonNull = allMatched
	return out, nil
}

// Project implements store.Engine: a fetch join assuming l's tail
// identifiers are valid lookups into r's head domain.
func (e *Engine) Project(l, r coltype.Column) (coltype.Column, error) {
	if f := e.fail; f != nil && f("project", l, r) {
		return nil, nil
	}
	lm, rm := asColumn(l), asColumn(r)
	idx := indexHead(rm)
	out := NewDense(lm.headSeqBase, rm.tailType, lm.Count())
	out.headDense = lm.headDense
	out.headIDs = lm.headIDs
	out.headType = lm.headType
	nonNull := true
	for i := 0; i < lm.Count(); i++ {
		v := lm.TailID(i)
		pos, ok := idx[v]
		if v == coltype.NullID || !ok {
			nonNull = false
			if rm.tailType.Kind == coltype.KindValue {
				out.AppendValue(nil)
			} else {
				out.AppendID(coltype.NullID)
			}
			continue
		}
		copyTailInto(out, rm, pos)
	}
	out.tailNonNull = nonNull
	return out, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// fail is an optional hook used by tests to simulate a per-step
// operator failure (spec.md section 4.3, "transient allocation or
// algorithmic failure"). It is unexported so production callers of
// New cannot accidentally leave it wired; WithFailureHook is the only
// way to set it.
type failureHook func(op string, l, r coltype.Column) bool

// WithFailureHook installs f as the engine's failure simulator and
// returns e for chaining. Passing nil disables injection.
func (e *Engine) WithFailureHook(f func(op string, l, r coltype.Column) bool) *Engine {
	e.fail = f
	return e
}
