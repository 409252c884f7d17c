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

// Package planner implements the cost-driven pairwise reduction
// planner (C3): repeatedly pick the cheapest adjacent pair of
// operands, invoke the matching operator primitive, and replace the
// pair with its result, recovering from per-step operator failures by
// postponing a broken pair and trying an alternative ordering first.
package planner

import (
	"github.com/sirupsen/logrus"

	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/config"
	"github.com/coldb/joinpath/cost"
	"github.com/coldb/joinpath/errs"
	"github.com/coldb/joinpath/store"
)

// slot is one owned working-array entry: a handle the planner holds a
// reference to, and the column it resolves to.
type slot struct {
	handle   store.Handle
	col      coltype.Column
	postpone bool
}

// Reduce runs the pairwise reduction loop of spec.md section 4.3 under
// mode over refs (already acquired by the caller — spec.md section
// 4.4 makes acquisition the dispatcher's job) and returns a handle to
// the single resulting column, registered and marked read-only. Every
// exit path releases every outstanding reference exactly once.
func Reduce(eng store.Engine, cfg config.CostModel, log *logrus.Entry, refs []store.Ref, mode coltype.Mode) (store.Handle, error) {
	slots := make([]*slot, len(refs))
	for i, ref := range refs {
		slots[i] = &slot{handle: ref.Handle, col: ref.Col}
	}

	steps := 0
	postponedCount := 0

	for len(slots) > 1 {
		k := len(slots)
		jStar := selectPair(slots, cfg, mode, postponedCount, k)

		result, err := execute(eng, slots, mode, jStar)
		steps++
		if err != nil {
			releaseSlots(eng, slots)
			return 0, errs.ErrAllocation.Wrap(err, "planner: operator invocation")
		}

		if result != nil {
			log.WithFields(logrus.Fields{
				"step": steps,
				"pair": jStar,
				"k":    k,
			}).Debug("planner: reduction succeeded")

			eng.MarkReadonly(result)
			newHandle := eng.Register(result)
			eng.Release(slots[jStar].handle)
			eng.Release(slots[jStar+1].handle)

			merged := &slot{handle: newHandle, col: result}
			slots = append(slots[:jStar], append([]*slot{merged}, slots[jStar+2:]...)...)

			for _, s := range slots {
				s.postpone = false
			}
			postponedCount = 0
			continue
		}

		// Failure: result == nil, no error. Postpone this pair.
		if slots[jStar].postpone && slots[jStar+1].postpone {
			releaseSlots(eng, slots)
			return 0, errs.ErrObjCreate.New(steps)
		}
		if !slots[jStar].postpone {
			slots[jStar].postpone = true
			postponedCount++
		}
		if !slots[jStar+1].postpone {
			slots[jStar+1].postpone = true
			postponedCount++
		}
		if postponedCount >= k {
			releaseSlots(eng, slots)
			return 0, errs.ErrObjCreate.New(steps)
		}
		eng.ClearError()
		log.WithFields(logrus.Fields{
			"step": steps,
			"pair": jStar,
		}).Debug("planner: postponing pair after operator failure")
	}

	out := slots[0]
	return out.handle, nil
}

// selectPair implements spec.md section 4.3 step 1: the cheapest
// adjacent pair. j=0 is the initial candidate; a later j only
// replaces it when strictly cheaper and not itself doubly postponed.
// A doubly-postponed running minimum is additionally rescued by the
// first non-doubly-postponed alternative regardless of cost, so the
// planner never gets stuck re-selecting a pair it just learned is
// broken while an untried alternative exists; postponedCount >= k
// lifts the postponement gate entirely.
func selectPair(slots []*slot, cfg config.CostModel, mode coltype.Mode, postponedCount, k int) int {
	liftConstraint := postponedCount >= k
	blocked := func(j int) bool {
		return !liftConstraint && slots[j].postpone && slots[j+1].postpone
	}

	best := 0
	bestCost := cost.Estimate(cfg, slots[0].col, slots[1].col, mode)

	for j := 1; j < k-1; j++ {
		c := cost.Estimate(cfg, slots[j].col, slots[j+1].col, mode)
		if blocked(j) {
			continue
		}
		if c < bestCost || blocked(best) {
			best = j
			bestCost = c
		}
	}
	return best
}

// execute invokes the operator primitive matching mode and jStar.
func execute(eng store.Engine, slots []*slot, mode coltype.Mode, jStar int) (coltype.Column, error) {
	l, r := slots[jStar].col, slots[jStar+1].col

	switch {
	case mode == coltype.LeftJoin && jStar == 0:
		return eng.LeftJoin(l, r, l.Count())
	case mode == coltype.LeftJoin:
		return eng.FullJoin(l, r, minInt(l.Count(), r.Count()))
	case mode == coltype.Project:
		return eng.Project(l, r)
	default: // FullJoin
		return eng.FullJoin(l, r, minInt(l.Count(), r.Count()))
	}
}

func releaseSlots(eng store.Engine, slots []*slot) {
	for _, s := range slots {
		eng.Release(s.handle)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
