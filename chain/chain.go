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

// Package chain implements the fused single-pass chain-projection
// evaluator (C2): given a sequence of columns where every intermediate
// tail addresses the next column's head, it walks the chain row by
// row and materializes the final projection with no intermediate
// columns. It is only applicable to PROJECT requests whose shape the
// dispatcher has already judged chain-eligible.
package chain

import (
	"github.com/sirupsen/logrus"

	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/errs"
	"github.com/coldb/joinpath/store"
)

// MaxChainDepth is the compile-time bound on chain length. Requests
// longer than this must route to the pairwise planner instead.
const MaxChainDepth = 256

// Walk composes the chain in one pass from refs (already acquired by
// the caller — spec.md section 4.4 makes acquisition the dispatcher's
// job), registers the result with eng, and releases every input
// reference exactly once on every exit path, success or failure.
func Walk(eng store.Engine, log *logrus.Entry, refs []store.Ref) (store.Handle, error) {
	k := len(refs)
	cols := make([]coltype.Column, k)
	ids := make([]store.Handle, k)
	for i, ref := range refs {
		cols[i] = ref.Col
		ids[i] = ref.Handle
	}
	defer releaseAcquired(eng, ids)

	terminal := cols[k-1]

	for _, c := range cols {
		if c.Count() == 0 {
			out, err := eng.AllocateOutput(coltype.Void, terminal.TailType(), 0)
			if err != nil {
				return 0, errs.ErrAllocation.Wrap(err, "chain: empty output")
			}
			return publish(eng, out.Freeze()), nil
		}
	}

	offsets := make([]coltype.ID, k)
	for i, c := range cols {
		offsets[i] = c.HeadSeqBase()
	}

	out, err := eng.AllocateOutput(coltype.Void, terminal.TailType(), cols[0].Count())
	if err != nil {
		return 0, errs.ErrAllocation.Wrap(err, "chain: output column")
	}

	survived := 0
	sawNull := false
	for lo := 0; lo < cols[0].Count(); lo++ {
		oc := cols[0].TailID(lo)
		ok := true
		for i := 1; i <= k-2; i++ {
			if oc == coltype.NullID {
				ok = false
				break
			}
			idx := int(oc - offsets[i])
			oc = cols[i].TailID(idx)
		}
		if !ok || oc == coltype.NullID {
			continue
		}
		idx := int(oc - offsets[k-1])
		if terminal.TailType().Kind == coltype.KindValue {
			out.AppendValue(terminal.TailValue(idx))
		} else {
			v := terminal.TailID(idx)
			if v == coltype.NullID {
				sawNull = true
			}
			out.AppendID(v)
		}
		survived++
	}

	// The output is duplicate-free only when every tail along the
	// chain is: distinct input rows then reach distinct terminal
	// offsets, and a duplicate-free terminal tail yields distinct
	// values. Sortedness is not propagated, since the walk's final
	// read index is a function of intermediate lookups and is not
	// generally monotonic in lo. Conservative: only propagate key and
	// non-null, never sorted/reverse-sorted.
	key := true
	for _, c := range cols {
		key = key && c.TailKey()
	}
	out.InheritTailProperties(false, false, key, !sawNull)

	log.WithFields(logrus.Fields{
		"chain_depth": k,
		"rows_in":     cols[0].Count(),
		"rows_out":    survived,
	}).Debug("chain: walk complete")

	return publish(eng, out.Freeze()), nil
}

func publish(eng store.Engine, c coltype.Column) store.Handle {
	h := eng.Register(c)
	eng.MarkReadonly(c)
	return h
}

func releaseAcquired(eng store.Engine, ids []store.Handle) {
	for _, id := range ids {
		eng.Release(id)
	}
}
