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

func f64(v float64) *float64 { return &v }

func TestMultiple(t *testing.T) {
	require.NotNil(t, Multiple(f64(1000), f64(100)))
	assert.InDelta(t, 10.0, *Multiple(f64(1000), f64(100)), 1e-9)

	assert.Nil(t, Multiple(nil, f64(100)))
	assert.Nil(t, Multiple(f64(1000), nil))
	assert.Nil(t, Multiple(f64(1000), f64(0)))
}

func TestMeanMedian(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Nil(t, Median(nil))

	values := []float64{3, 1, 2}
	assert.InDelta(t, 2.0, *Mean(values), 1e-9)
	assert.InDelta(t, 2.0, *Median(values), 1e-9)

	even := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, *Median(even), 1e-9)
}

func buildSnapshot(ticker string, mcap, netDebt, ev float64, rev, ebitda, ebit map[int]float64) *data.Snapshot {
	snapshot := data.NewSnapshot(&data.Peer{Company: ticker, Ticker: ticker})
	snapshot.MarketCap = f64(mcap)
	snapshot.NetDebt = f64(netDebt)
	snapshot.EnterpriseValue = f64(ev)
	for y, v := range rev {
		snapshot.Revenue[y] = v
	}
	for y, v := range ebitda {
		snapshot.EBITDA[y] = v
	}
	for y, v := range ebit {
		snapshot.EBIT[y] = v
	}
	return snapshot
}

func TestComputeProviderEVMode(t *testing.T) {
	snapshot := buildSnapshot("BSL.DE", 900, 100, 1100,
		map[int]float64{2024: 200}, map[int]float64{2024: 50}, map[int]float64{2024: 25})

	set := Compute(snapshot, []int{2024}, true)
	assert.InDelta(t, 5.5, *set.EVSales[2024], 1e-9)
	assert.InDelta(t, 22.0, *set.EVEBITDA[2024], 1e-9)
	assert.InDelta(t, 44.0, *set.EVEBIT[2024], 1e-9)

	// computed mode rebuilds EV = 900 + 100
	set = Compute(snapshot, []int{2024}, false)
	assert.InDelta(t, 5.0, *set.EVSales[2024], 1e-9)
}

func TestComputeMissingDenominator(t *testing.T) {
	snapshot := buildSnapshot("NKT.CO", 900, 100, 1000,
		map[int]float64{2024: 200}, nil, map[int]float64{2024: 0})

	set := Compute(snapshot, []int{2023, 2024}, true)
	assert.Nil(t, set.EVEBITDA[2024], "no EBITDA sourced")
	assert.Nil(t, set.EVEBIT[2024], "zero denominator")
	assert.Nil(t, set.EVSales[2023], "year never sourced")
	require.NotNil(t, set.EVSales[2024])
}

func TestSummarizeCoreVsExtended(t *testing.T) {
	peers := []*data.Peer{
		{Company: "Core A", Ticker: "A", Selected: 1, CoreSet: 1},
		{Company: "Core B", Ticker: "B", Selected: 1, CoreSet: 1},
		{Company: "Ext C", Ticker: "C", Selected: 1, CoreSet: 0},
		{Company: "Dropped D", Ticker: "D", Selected: 0, CoreSet: 1},
		{Company: "TKH (subject)", Ticker: "S", Selected: 1, CoreSet: 1},
	}

	snapshots := map[string]*data.Snapshot{
		"A": buildSnapshot("A", 0, 0, 1000, map[int]float64{2024: 100}, nil, nil), // EV/Sales 10
		"B": buildSnapshot("B", 0, 0, 2000, map[int]float64{2024: 100}, nil, nil), // EV/Sales 20
		"C": buildSnapshot("C", 0, 0, 6000, map[int]float64{2024: 100}, nil, nil), // EV/Sales 60
		"D": buildSnapshot("D", 0, 0, 9000, map[int]float64{2024: 100}, nil, nil), // excluded
		"S": buildSnapshot("S", 0, 0, 9000, map[int]float64{2024: 100}, nil, nil), // subject
	}

	rows := Summarize(peers, snapshots, []int{2024}, true)
	require.Len(t, rows, 3)

	sales := rows[0]
	assert.Equal(t, "EV/Sales 2024", sales.Metric)
	require.NotNil(t, sales.CoreMean)
	assert.InDelta(t, 15.0, *sales.CoreMean, 1e-9)
	assert.InDelta(t, 15.0, *sales.CoreMedian, 1e-9)
	assert.InDelta(t, 30.0, *sales.ExtMean, 1e-9)
	assert.InDelta(t, 20.0, *sales.ExtMedian, 1e-9)

	// no EBITDA data anywhere
	assert.Nil(t, rows[1].ExtMean)
}
