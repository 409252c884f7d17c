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

// Package config holds the tunable constants of the cost model (the
// L1-sized "small operand" threshold and the saturation ceiling) plus
// the data-driven rule table the cost model evaluates. Values default
// to exactly what spec.md section 4.1 mandates; a deployment may
// override them from a YAML file or from the environment, the way the
// teacher engine's Config is overridden by GMS_EXPERIMENTAL.
package config

import (
	"os"

	"github.com/spf13/cast"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Rule is one row of the cost-model's physical-access scaling table
// (spec.md section 4.1, Phase B). Predicate takes the already-computed
// physical properties needed to decide whether the rule fires; Divisor
// is applied to the running cost on the first match, top to bottom.
type Rule struct {
	Name      string
	Divisor   uint64
	Predicate RulePredicate
}

// RulePredicate is evaluated with the physical properties of the two
// operands and the ambient thresholds; it must not have side effects.
type RulePredicate func(p RuleInputs) bool

// RuleInputs bundles the physical properties and thresholds a Rule's
// Predicate needs. Kept as a struct (rather than positional args)
// because several rules only need a subset of these fields.
type RuleInputs struct {
	TailDenseL       bool
	TailSortedL      bool
	HeadDenseR       bool
	HeadSortedR      bool
	CountL           uint64
	CountR           uint64
	Small            uint64
	LeftJoinAllowed  bool // true unless mode == LeftJoin; suppresses "reversed" access rules
}

// CostModel is the full tunable surface of the cost model (C1).
type CostModel struct {
	// Small is the element-count threshold below which an operand is
	// assumed to fit the L1 data cache (spec.md's SMALL_OPERAND).
	Small uint64 `yaml:"small_operand"`
	// CountMax is the saturation ceiling for both the logical upper
	// bound and the returned estimate (spec.md's COUNT_MAX).
	CountMax uint64 `yaml:"count_max"`
	// Rules is the ordered rule table; first match wins.
	Rules []Rule `yaml:"-"`
}

// yamlOverrides is the subset of CostModel that can be expressed in a
// plain YAML document; Rules stays code (it is not meant to be
// reconfigured per deployment, only Small/CountMax are).
type yamlOverrides struct {
	SmallOperand uint64 `yaml:"small_operand"`
	CountMax     uint64 `yaml:"count_max"`
}

// Default returns the spec-mandated cost model: SMALL = 1024, no
// saturation below 2^63-1, and the 14-rule cascade of spec.md section
// 4.1 in order.
func Default() CostModel {
	return CostModel{
		Small:    1024,
		CountMax: 1<<63 - 1,
		Rules:    defaultRules(),
	}
}

func defaultRules() []Rule {
	return []Rule{
		{Name: "dense_fetch", Divisor: 7, Predicate: func(p RuleInputs) bool {
			return p.TailDenseL && p.HeadDenseR
		}},
		{Name: "ordered_fetch", Divisor: 6, Predicate: func(p RuleInputs) bool {
			return p.TailSortedL && p.HeadDenseR
		}},
		{Name: "reversed_ordered_fetch", Divisor: 6, Predicate: func(p RuleInputs) bool {
			return p.TailDenseL && p.HeadSortedR && p.LeftJoinAllowed
		}},
		{Name: "fetch_l1_random_r", Divisor: 5, Predicate: func(p RuleInputs) bool {
			return p.HeadDenseR && p.CountR <= p.Small
		}},
		{Name: "reversed_fetch_l1_random_l", Divisor: 5, Predicate: func(p RuleInputs) bool {
			return p.TailDenseL && p.CountL <= p.Small && p.LeftJoinAllowed
		}},
		{Name: "merge_join", Divisor: 4, Predicate: func(p RuleInputs) bool {
			return p.TailSortedL && p.HeadSortedR
		}},
		{Name: "binary_lookup_r", Divisor: 3, Predicate: func(p RuleInputs) bool {
			return p.HeadSortedR && p.CountR <= p.Small
		}},
		{Name: "reversed_binary_lookup_l", Divisor: 3, Predicate: func(p RuleInputs) bool {
			return p.TailSortedL && p.CountL <= p.Small && p.LeftJoinAllowed
		}},
		{Name: "sortmerge_l1", Divisor: 3, Predicate: func(p RuleInputs) bool {
			return (p.HeadSortedR && p.CountL <= p.Small) || (p.TailSortedL && p.CountR <= p.Small)
		}},
		{Name: "hash_join_l1_r", Divisor: 3, Predicate: func(p RuleInputs) bool {
			return p.CountR <= p.Small
		}},
		{Name: "reversed_hash_join_l1_l", Divisor: 3, Predicate: func(p RuleInputs) bool {
			return p.CountL <= p.Small && p.LeftJoinAllowed
		}},
		{Name: "fetch_beyond_l1", Divisor: 2, Predicate: func(p RuleInputs) bool {
			return p.HeadDenseR
		}},
		{Name: "reversed_fetch_beyond_l1", Divisor: 2, Predicate: func(p RuleInputs) bool {
			return p.TailDenseL && p.LeftJoinAllowed
		}},
		{Name: "hash_or_sortmerge_beyond_l1", Divisor: 1, Predicate: func(p RuleInputs) bool {
			return true
		}},
	}
}

// Load reads a YAML document at path and applies its small_operand
// and count_max overrides on top of Default. An empty path returns
// Default unchanged.
func Load(path string) (CostModel, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}
	var overrides yamlOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}
	if overrides.SmallOperand != 0 {
		cfg.Small = overrides.SmallOperand
	}
	if overrides.CountMax != 0 {
		cfg.CountMax = overrides.CountMax
	}
	return cfg, nil
}

// Environment variable names honored by FromEnv.
const (
	EnvSmallOperand = "JOINPATH_SMALL_OPERAND"
	EnvCountMax     = "JOINPATH_COUNT_MAX"
)

// FromEnv applies EnvSmallOperand/EnvCountMax overrides on top of cfg,
// using cast for lenient string-to-uint64 conversion the same way the
// teacher engine reads its experimental-flag env var.
func FromEnv(cfg CostModel) CostModel {
	if v, ok := os.LookupEnv(EnvSmallOperand); ok {
		if n, err := cast.ToUint64E(v); err == nil {
			cfg.Small = n
		}
	}
	if v, ok := os.LookupEnv(EnvCountMax); ok {
		if n, err := cast.ToUint64E(v); err == nil {
			cfg.CountMax = n
		}
	}
	return cfg
}
