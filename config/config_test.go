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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpec(t *testing.T) {
	cfg := Default()
	require.Equal(t, uint64(1024), cfg.Small)
	require.Len(t, cfg.Rules, 14)
	require.Equal(t, uint64(7), cfg.Rules[0].Divisor)
	require.Equal(t, uint64(1), cfg.Rules[13].Divisor)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("small_operand: 64\ncount_max: 100\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(64), cfg.Small)
	require.Equal(t, uint64(100), cfg.CountMax)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Small, cfg.Small)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvSmallOperand, "32")
	cfg := FromEnv(Default())
	require.Equal(t, uint64(32), cfg.Small)
}
