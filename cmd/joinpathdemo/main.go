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

// Command joinpathdemo loads a small fixture column set out of a
// BoltDB file and issues one join-path request through the root
// package, printing the resulting column. It exercises the full
// dispatcher → planner/chain → storage-collaborator path outside of
// go test.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/boltdb/bolt"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/coldb/joinpath"
	"github.com/coldb/joinpath/coltype"
	"github.com/coldb/joinpath/config"
	"github.com/coldb/joinpath/store"
	"github.com/coldb/joinpath/store/memstore"
)

var (
	dbPath       = "fixture.db"
	op           = "joinPath"
	configPath   = ""
	enableChains = false
)

func main() {
	flag.StringVar(&dbPath, "db", dbPath, "path to the BoltDB fixture file")
	flag.StringVar(&op, "op", op, "joinPath | leftjoinPath | projectionPath")
	flag.StringVar(&configPath, "config", configPath, "optional cost-model YAML override")
	flag.BoolVar(&enableChains, "enable-chain", enableChains, "opt into the chain-eligibility predicate for projectionPath")
	flag.Parse()

	log := logrus.NewEntry(logrus.StandardLogger())

	if err := run(log); err != nil {
		log.WithError(err).Error("joinpathdemo: failed")
		os.Exit(1)
	}
}

// fixtureColumn is the on-disk shape of one bucket value: a column's
// head base, tail kind, and tail contents, recorded as plain YAML so
// a fixture file can be hand-authored without a Go program.
type fixtureColumn struct {
	SeqBase   int64    `yaml:"seq_base"`
	Kind      string   `yaml:"kind"` // "identifier" or "value"
	ValueName string   `yaml:"value_name,omitempty"`
	IDs       []int64  `yaml:"ids,omitempty"`
	Values    []string `yaml:"values,omitempty"`
}

func run(log *logrus.Entry) error {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return fmt.Errorf("joinpathdemo: opening %s: %w", dbPath, err)
	}
	defer db.Close()

	eng := memstore.New()
	var handles []store.Handle

	err = db.View(func(tx *bolt.Tx) error {
		manifest := tx.Bucket([]byte("manifest"))
		if manifest == nil {
			return fmt.Errorf("joinpathdemo: fixture missing manifest bucket")
		}
		var order []string
		if err := yaml.Unmarshal(manifest.Get([]byte("order")), &order); err != nil {
			return fmt.Errorf("joinpathdemo: parsing manifest order: %w", err)
		}

		columns := tx.Bucket([]byte("columns"))
		if columns == nil {
			return fmt.Errorf("joinpathdemo: fixture missing columns bucket")
		}

		for _, name := range order {
			raw := columns.Get([]byte(name))
			if raw == nil {
				return fmt.Errorf("joinpathdemo: fixture column %q not found", name)
			}
			var fc fixtureColumn
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				return fmt.Errorf("joinpathdemo: parsing column %q: %w", name, err)
			}
			col := buildColumn(fc)
			h := eng.Put(col, 1)
			handles = append(handles, h)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(handles) < 2 {
		return fmt.Errorf("joinpathdemo: fixture must name at least two columns, got %d", len(handles))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("joinpathdemo: loading cost model: %w", err)
	}
	cfg = config.FromEnv(cfg)

	var opCode joinpath.Op
	switch op {
	case "joinPath":
		opCode = joinpath.OpJoinPath
	case "leftjoinPath":
		opCode = joinpath.OpLeftjoinPath
	case "projectionPath":
		opCode = joinpath.OpProjectionPath
	default:
		return fmt.Errorf("joinpathdemo: unknown -op %q", op)
	}

	outH, err := joinpath.Dispatch(context.Background(), eng, log, opCode, handles, joinpath.Options{
		CostModel:              cfg,
		EnableChainEligibility: enableChains,
	})
	if err != nil {
		return fmt.Errorf("joinpathdemo: dispatch: %w", err)
	}

	out, err := eng.Acquire(outH)
	if err != nil {
		return fmt.Errorf("joinpathdemo: acquiring result: %w", err)
	}
	defer eng.Release(outH)

	fmt.Printf("result column: %d rows\n", out.Count())
	for i := 0; i < out.Count(); i++ {
		if out.TailType().Kind == coltype.KindValue {
			fmt.Printf("  [%d] = %v\n", i, out.TailValue(i))
		} else {
			fmt.Printf("  [%d] = %v\n", i, out.TailID(i))
		}
	}
	return nil
}

func buildColumn(fc fixtureColumn) *memstore.Column {
	switch fc.Kind {
	case "value":
		col := memstore.NewDense(coltype.ID(fc.SeqBase), coltype.Value(fc.ValueName), len(fc.Values))
		for _, v := range fc.Values {
			col.AppendValue(v)
		}
		return col
	default: // "identifier"
		col := memstore.NewDense(coltype.ID(fc.SeqBase), coltype.Identifier, len(fc.IDs))
		for _, v := range fc.IDs {
			col.AppendID(coltype.ID(v))
		}
		return col
	}
}
