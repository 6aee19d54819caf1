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

func TestExtractMetricFirstMatchWins(t *testing.T) {
	lines := []StatementLine{
		{Label: "Operating Income", Values: map[int]float64{2024: 50}},
		{Label: "EBIT", Values: map[int]float64{2024: 60}},
	}

	// "EBIT" precedes "Operating Income" in the candidate list
	values := ExtractMetric(lines, ebitLabels)
	require.NotNil(t, values)
	assert.Equal(t, 60.0, values[2024])
}

func TestExtractMetricCaseInsensitive(t *testing.T) {
	lines := []StatementLine{
		{Label: "TOTAL REVENUE", Values: map[int]float64{2023: 100}},
	}

	values := ExtractMetric(lines, revenueLabels)
	require.NotNil(t, values)
	assert.Equal(t, 100.0, values[2023])
}

func TestExtractMetricNoMatch(t *testing.T) {
	lines := []StatementLine{{Label: "Gross Profit", Values: map[int]float64{2023: 1}}}
	assert.Nil(t, ExtractMetric(lines, ebitdaLabels))
}

func TestNormalizeScalesToMillions(t *testing.T) {
	snapshot := data.NewSnapshot(&data.Peer{Company: "Basler", Ticker: "BSL.DE"})
	lines := []StatementLine{
		{Label: "Total Revenue", Values: map[int]float64{2023: 203_100_000, 2024: 183_700_000}},
		{Label: "EBITDA", Values: map[int]float64{2024: 25_400_000}},
		{Label: "Operating Income", Values: map[int]float64{2024: 10_200_000}},
	}

	Normalize(snapshot, lines, []int{2023, 2024})

	assert.InDelta(t, 203.1, snapshot.Revenue[2023], 1e-9)
	assert.InDelta(t, 183.7, snapshot.Revenue[2024], 1e-9)
	assert.InDelta(t, 25.4, snapshot.EBITDA[2024], 1e-9)
	assert.InDelta(t, 10.2, snapshot.EBIT[2024], 1e-9)

	_, ok := snapshot.EBITDA[2023]
	assert.False(t, ok, "2023 EBITDA was never reported")
}

func TestNormalizeDerivesEBITDAFromEBITPlusDandA(t *testing.T) {
	snapshot := data.NewSnapshot(&data.Peer{Company: "Mersen", Ticker: "MRN.PA"})
	lines := []StatementLine{
		{Label: "Total Revenue", Values: map[int]float64{2024: 1_200_000_000}},
		{Label: "Operating Income", Values: map[int]float64{2023: 120_000_000, 2024: 130_000_000}},
		{Label: "Depreciation And Amortization", Values: map[int]float64{2024: 70_000_000}},
	}

	Normalize(snapshot, lines, []int{2023, 2024})

	// derived only where both EBIT and D&A exist
	assert.InDelta(t, 200.0, snapshot.EBITDA[2024], 1e-9)
	_, ok := snapshot.EBITDA[2023]
	assert.False(t, ok)
}

func TestNormalizePrefersReportedEBITDA(t *testing.T) {
	snapshot := data.NewSnapshot(&data.Peer{Company: "NKT", Ticker: "NKT.CO"})
	lines := []StatementLine{
		{Label: "EBITDA", Values: map[int]float64{2024: 500_000_000}},
		{Label: "EBIT", Values: map[int]float64{2024: 300_000_000}},
		{Label: "Depreciation And Amortization", Values: map[int]float64{2024: 100_000_000}},
	}

	Normalize(snapshot, lines, []int{2024})

	assert.InDelta(t, 500.0, snapshot.EBITDA[2024], 1e-9)
}
