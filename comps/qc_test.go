// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package comps

import (
	"testing"

	"github.com/penny-vault/pvcomps/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qcPeer(ticker string) *data.Peer {
	return &data.Peer{Company: ticker, Ticker: ticker, Selected: 1}
}

func TestRunQCCleanPeer(t *testing.T) {
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2023: 190, 2024: 200},
		map[int]float64{2023: 48, 2024: 50},
		map[int]float64{2023: 24, 2024: 25})
	snapshot.Beta = f64(1.1)

	row := RunQC(qcPeer("A"), snapshot, []int{2023, 2024}, true)

	assert.Equal(t, CheckPass, row.EVReconciliation)
	assert.Equal(t, CheckPass, row.UnitScaling)
	assert.Equal(t, CheckPass, row.MissingData)
	assert.Equal(t, CheckPass, row.YearConsistency)
	assert.Equal(t, CheckPass, row.LossMaking)
	require.NotNil(t, row.EVDeltaPct)
	assert.InDelta(t, 0.0, *row.EVDeltaPct, 1e-9)
}

func TestRunQCEVReconciliationFails(t *testing.T) {
	// provider EV differs from mktcap + net debt by 20%
	snapshot := buildSnapshot("A", 700, 100, 1000,
		map[int]float64{2024: 200}, map[int]float64{2024: 50}, map[int]float64{2024: 25})
	snapshot.Beta = f64(1.0)

	row := RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckFail, row.EVReconciliation)
	require.NotNil(t, row.EVDelta)
	assert.InDelta(t, 200.0, *row.EVDelta, 1e-9)
}

func TestRunQCScaleFlag(t *testing.T) {
	// EBITDA accidentally in raw units instead of millions
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2024: 200}, map[int]float64{2024: 0.00005}, map[int]float64{2024: 25})
	snapshot.Beta = f64(1.0)

	row := RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckFail, row.UnitScaling)
	assert.Equal(t, "Likely unit mismatch in EBITDA/EBIT", row.Explanation)
}

func TestRunQCZeroRevenueIsNotAGap(t *testing.T) {
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2024: 0}, map[int]float64{2024: 50}, map[int]float64{2024: 25})
	snapshot.Beta = f64(1.0)

	row := RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckPass, row.MissingData)

	// a zero EBITDA still fails: it is a multiple denominator
	snapshot = buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2024: 200}, map[int]float64{2024: 0}, map[int]float64{2024: 25})
	snapshot.Beta = f64(1.0)

	row = RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckFail, row.MissingData)
}

func TestRunQCMissingData(t *testing.T) {
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2024: 200}, map[int]float64{2024: 50}, map[int]float64{2024: 25})
	// beta never sourced

	row := RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckFail, row.MissingData)
}

func TestRunQCYearConsistency(t *testing.T) {
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2023: 190, 2024: 200},
		map[int]float64{2023: 4, 2024: 50_000}, // x12500 jump
		map[int]float64{2023: 24, 2024: 25})
	snapshot.Beta = f64(1.0)

	row := RunQC(qcPeer("A"), snapshot, []int{2023, 2024}, true)
	assert.Equal(t, CheckFail, row.YearConsistency)
}

func TestRunQCLossMakingFlag(t *testing.T) {
	snapshot := buildSnapshot("A", 900, 100, 1000,
		map[int]float64{2024: 200}, map[int]float64{2024: 50}, map[int]float64{2024: -25})
	snapshot.Beta = f64(1.0)

	row := RunQC(qcPeer("A"), snapshot, []int{2024}, true)
	assert.Equal(t, CheckFlag, row.LossMaking)
}
