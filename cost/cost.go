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

// Package cost implements the join-path cost model (C1): a pure,
// two-phase estimate of the output cardinality of a single binary
// join, used by the planner to rank adjacent pairings. It never
// fails and never mutates its inputs.
package cost

import (
	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/config"
)

// Estimate returns the estimated output row count of joining l to r
// under mode, saturating at cfg.CountMax. Deterministic: the same
// l, r, mode, cfg always produce the same result (P4).
func Estimate(cfg config.CostModel, l, r coltype.Column, mode coltype.Mode) uint64 {
	lc := uint64(l.Count())
	rc := uint64(r.Count())

	base := logicalUpperBound(l, r, lc, rc, cfg.CountMax)
	if base > cfg.CountMax {
		base = cfg.CountMax
	}

	inputs := config.RuleInputs{
		TailDenseL:      l.TailDense(),
		TailSortedL:     l.TailSorted(),
		HeadDenseR:      r.HeadDense(),
		HeadSortedR:     r.HeadSorted(),
		CountL:          lc,
		CountR:          rc,
		Small:           cfg.Small,
		LeftJoinAllowed: mode != coltype.LeftJoin,
	}

	for _, rule := range cfg.Rules {
		if rule.Predicate(inputs) {
			if rule.Divisor == 0 {
				return base
			}
			return base / rule.Divisor
		}
	}
	// The last rule in the spec table has no guard (the unconditional
	// hash/sort-merge default), so this is unreachable with
	// config.Default's rule set; kept as a safety net for a custom
	// rule table that omits a catch-all.
	return base
}

// logicalUpperBound computes Phase A of spec.md section 4.1: the
// upper bound implied purely by uniqueness, saturating at countMax on
// overflow of the cross-product case.
func logicalUpperBound(l, r coltype.Column, lc, rc, countMax uint64) uint64 {
	switch {
	case l.TailKey() && r.HeadKey():
		return min(lc, rc)
	case l.TailKey():
		return rc
	case r.HeadKey():
		return lc
	default:
		return saturatingMul(lc, rc, countMax)
	}
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// saturatingMul multiplies a and b, clamping to max instead of
// overflowing uint64.
func saturatingMul(a, b, max uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > max/b {
		return max
	}
	product := a * b
	if product > max {
		return max
	}
	return product
}
