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

package planner_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/config"
	"github.com/coldb/joinpath/planner"
	"github.com/coldb/joinpath/store"
	"github.com/coldb/joinpath/store/memstore"
)

func idColumn(seqBase coltype.ID, ids []coltype.ID) *memstore.Column {
	c := memstore.NewDense(seqBase, coltype.Identifier, len(ids))
	for _, v := range ids {
		c.AppendID(v)
	}
	return c
}

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// acquireRefs simulates the dispatcher's job (spec.md section 4.4):
// resolving raw handles into the (handle, column) pairs planner.Reduce
// consumes.
func acquireRefs(t *testing.T, e *memstore.Engine, handles ...store.Handle) []store.Ref {
	t.Helper()
	refs := make([]store.Ref, len(handles))
	for i, h := range handles {
		col, err := e.Acquire(h)
		require.NoError(t, err)
		refs[i] = store.Ref{Handle: h, Col: col}
	}
	return refs
}

// Scenario 3: cost-driven reordering. A key-sided 10-row operand must
// be paired first, even though it is not adjacent-cheapest by raw
// position; the planner picks (A, B) over (B, C).
func TestReducePicksCheapestAdjacentPairFirst(t *testing.T) {
	e := memstore.New()
	big := make([]coltype.ID, 0, 1000)
	for i := 0; i < 1000; i++ {
		big = append(big, coltype.ID(i))
	}
	a := idColumn(0, big)
	a.InheritTailProperties(false, false, true, true) // tail_key(A): pairing with B bounds the result to count(B)
	b := idColumn(0, []coltype.ID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	c := idColumn(0, big)

	ha := e.Put(a, 1)
	hb := e.Put(b, 1)
	hc := e.Put(c, 1)

	var firstL, firstR coltype.Column
	e.WithFailureHook(func(op string, l, r coltype.Column) bool {
		if firstL == nil {
			firstL, firstR = l, r
		}
		return false
	})

	outH, err := planner.Reduce(e, config.Default(), discardLog(), acquireRefs(t, e, ha, hb, hc), coltype.FullJoin)
	require.NoError(t, err)
	require.NotZero(t, outH)
	require.True(t, firstL == coltype.Column(a) && firstR == coltype.Column(b), "first pairing must be (A, B)")
}

// Scenario 4: postponement recovery — the first attempt at pairing
// (J[0], J[1]) fails, forcing the planner to materialize (J[1], J[2])
// first, then retry (J[0], result) successfully.
func TestReducePostponementRecovery(t *testing.T) {
	e := memstore.New()
	a := idColumn(0, []coltype.ID{100, 101})
	b := idColumn(100, []coltype.ID{200, 201})
	c := idColumn(200, []coltype.ID{1, 2})

	ha := e.Put(a, 1)
	hb := e.Put(b, 1)
	hc := e.Put(c, 1)

	attempts := 0
	e.WithFailureHook(func(op string, l, r coltype.Column) bool {
		if op != "full_join" {
			return false
		}
		if l == a && r == b {
			attempts++
			return attempts == 1 // fail exactly once on the (A, B) pairing
		}
		return false
	})

	outH, err := planner.Reduce(e, config.Default(), discardLog(), acquireRefs(t, e, ha, hb, hc), coltype.FullJoin)
	require.NoError(t, err)

	out, err := e.Acquire(outH)
	require.NoError(t, err)
	require.Equal(t, 2, out.Count())
}

// Scenario 5: irrecoverable failure — every full_join attempt fails.
func TestReduceIrrecoverableFailure(t *testing.T) {
	e := memstore.New()
	a := idColumn(0, []coltype.ID{1, 2})
	b := idColumn(0, []coltype.ID{1, 2})
	c := idColumn(0, []coltype.ID{1, 2})

	ha := e.Put(a, 1)
	hb := e.Put(b, 1)
	hc := e.Put(c, 1)

	refs := acquireRefs(t, e, ha, hb, hc)

	e.WithFailureHook(func(op string, l, r coltype.Column) bool {
		return op == "full_join"
	})

	_, err := planner.Reduce(e, config.Default(), discardLog(), refs, coltype.FullJoin)
	require.Error(t, err)

	require.Equal(t, 1, e.RefCount(ha))
	require.Equal(t, 1, e.RefCount(hb))
	require.Equal(t, 1, e.RefCount(hc))
}

// P1: reference-count conservation on the success path — the planner
// releases exactly the reference it was handed per input; the
// caller's original reference (from Put) survives on the inputs it
// consumed, and the result holds exactly one reference.
func TestReduceRefcountConservationOnSuccess(t *testing.T) {
	e := memstore.New()
	a := idColumn(0, []coltype.ID{1, 2})
	b := idColumn(0, []coltype.ID{1, 2})

	ha := e.Put(a, 1)
	hb := e.Put(b, 1)

	refs := acquireRefs(t, e, ha, hb)
	outH, err := planner.Reduce(e, config.Default(), discardLog(), refs, coltype.Project)
	require.NoError(t, err)

	require.Equal(t, 1, e.RefCount(ha))
	require.Equal(t, 1, e.RefCount(hb))
	require.Equal(t, 1, e.RefCount(outH))
}

// P1: on the irrecoverable-failure path, every reference the planner
// was handed is released — nothing it touched stays above its
// pre-existing baseline.
func TestReduceRefcountConservationOnFailure(t *testing.T) {
	e := memstore.New()
	a := idColumn(0, []coltype.ID{1, 2})
	b := idColumn(0, []coltype.ID{1, 2})

	ha := e.Put(a, 1)
	hb := e.Put(b, 1)

	refs := acquireRefs(t, e, ha, hb)
	e.WithFailureHook(func(op string, l, r coltype.Column) bool { return true })

	_, err := planner.Reduce(e, config.Default(), discardLog(), refs, coltype.Project)
	require.Error(t, err)
	require.Equal(t, 1, e.RefCount(ha))
	require.Equal(t, 1, e.RefCount(hb))
}
