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
package workbook

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/penny-vault/pvcomps/data"
	"github.com/penny-vault/pvcomps/wacc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func f64(v float64) *float64 {
	return &v
}

func testInput() *Input {
	peers := []*data.Peer{
		{Company: "Alpha Industries", Ticker: "ALPHA", Selected: 1, CoreSet: 1, PeerStatus: "Core", SegmentFit: "Broad industrials", Rationale: "Closest segment mix"},
		{Company: "Beta Systems", Ticker: "BETA", Selected: 1, CoreSet: 0, PeerStatus: "Segment-only", SegmentFit: "Connectivity only", Rationale: "Single segment overlap"},
		{Company: "Subject Company", Ticker: "SUBJ", Selected: 0, CoreSet: 0, PeerStatus: "Subject", SegmentFit: "n/a", Rationale: "Valuation subject"},
	}

	one := 1.0

	alpha := &data.Snapshot{
		Company: "Alpha Industries", Ticker: "ALPHA", VendorTicker: "ALPHA", Currency: "EUR",
		SharePrice:      f64(40),
		MarketCap:       f64(1600),
		EnterpriseValue: f64(2100),
		GrossDebt:       f64(640),
		Cash:            f64(140),
		NetDebt:         f64(500),
		Beta:            f64(1.2),
		FXToEUR:         &one,
		Revenue:         map[int]float64{2023: 950, 2024: 1000},
		EBITDA:          map[int]float64{2023: 190, 2024: 210},
		EBIT:            map[int]float64{2023: 140, 2024: 150},
		Sources:         data.NewSourceSet(),
		FetchedAt:       time.Now(),
	}
	alpha.Sources.MarketCap = "Yahoo Finance (ALPHA)"

	beta := &data.Snapshot{
		Company: "Beta Systems", Ticker: "BETA", VendorTicker: "BETA", Currency: "EUR",
		MarketCap:       f64(800),
		EnterpriseValue: f64(1000),
		NetDebt:         f64(200),
		Beta:            f64(1.5),
		FXToEUR:         &one,
		Revenue:         map[int]float64{2023: 480, 2024: 500},
		EBITDA:          map[int]float64{2023: 95, 2024: 100},
		EBIT:            map[int]float64{2023: 70, 2024: 75},
		Sources:         data.NewSourceSet(),
		FetchedAt:       time.Now(),
	}

	return &Input{
		Peers: peers,
		Snapshots: map[string]*data.Snapshot{
			"ALPHA": alpha,
			"BETA":  beta,
		},
		Years:         []int{2023, 2024},
		UseProviderEV: true,
		Assumptions: wacc.Assumptions{
			RiskFreeRate:         0.030,
			EquityRiskPremium:    0.050,
			SmallFirmPremium:     0.0125,
			MarginalTaxRate:      0.25,
			PreTaxCostOfDebt:     0.055,
			TargetDebtOverEquity: 0.25,
			BetaHorizon:          "5y",
			BetaFrequency:        "monthly",
			BetaIndex:            "local market index",
		},
		AsOf:       time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		Provider:   "Yahoo Finance (automated fallback)",
		WRDSStatus: "WRDS not configured (wrds.dsn missing); fallback provider used",
	}
}

func rawFloat(t *testing.T, f *excelize.File, sheet, cell string) float64 {
	t.Helper()
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.NotEmpty(t, raw, "cell %s!%s is empty", sheet, cell)
	v, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	return v
}

func TestBuild(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "peer_model.xlsx")
	require.NoError(t, Build(testInput(), fn))

	f, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetPeerTable, SheetWACCModel, SheetSources,
		SheetQCReport, SheetPeerRationale, SheetCleanOverview,
	}, f.GetSheetList())

	company, err := f.GetCellValue(SheetPeerTable, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Industries", company)

	// provider EV 2100 over 2024 revenue 1000; first year block starts
	// at column Q (2023), the 2024 block at W, EV/Sales 2024 at Z
	assert.InDelta(t, 2.1, rawFloat(t, f, SheetPeerTable, "Z2"), 1e-9)

	// EV/EBITDA 2024 = 2100 / 210
	assert.InDelta(t, 10.0, rawFloat(t, f, SheetPeerTable, "AA2"), 1e-9)
}

func TestBuildSummaryBlock(t *testing.T) {
	input := testInput()
	fn := filepath.Join(t.TempDir(), "peer_model.xlsx")
	require.NoError(t, Build(input, fn))

	f, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer f.Close()

	// 3 peers, so the summary title lands at row 7 and the header at 8
	title, err := f.GetCellValue(SheetPeerTable, "A7")
	require.NoError(t, err)
	assert.Equal(t, "Summary Statistics (Selected peers)", title)

	metric, err := f.GetCellValue(SheetPeerTable, "A9")
	require.NoError(t, err)
	assert.Equal(t, "EV/Sales 2023", metric)

	// extended set = ALPHA (2100/950) and BETA (1000/480)
	expected := (2100.0/950.0 + 1000.0/480.0) / 2
	assert.InDelta(t, expected, rawFloat(t, f, SheetPeerTable, "E9"), 1e-9)
}

func TestBuildWACCSheet(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "peer_model.xlsx")
	require.NoError(t, Build(testInput(), fn))

	f, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer f.Close()

	// ALPHA: D/E = 500/1600, unlevered = 1.2 / (1 + 0.75 * 0.3125)
	de := 500.0 / 1600.0
	assert.InDelta(t, de, rawFloat(t, f, SheetWACCModel, "H2"), 1e-9)
	assert.InDelta(t, 1.2/(1+0.75*de), rawFloat(t, f, SheetWACCModel, "J2"), 1e-9)

	// subject row excluded from the unlevering table
	company, err := f.GetCellValue(SheetWACCModel, "A4")
	require.NoError(t, err)
	assert.Empty(t, company)
}

func TestBuildQCSheet(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "peer_model.xlsx")
	require.NoError(t, Build(testInput(), fn))

	f, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer f.Close()

	// ALPHA reconciles exactly: EV 2100 = 1600 + 500
	status, err := f.GetCellValue(SheetQCReport, "C2")
	require.NoError(t, err)
	assert.Equal(t, "PASS", status)

	// subject has no snapshot so every base field is missing
	status, err = f.GetCellValue(SheetQCReport, "G4")
	require.NoError(t, err)
	assert.Equal(t, "FAIL", status)
}

func TestBuildSourcesSheet(t *testing.T) {
	input := testInput()
	fn := filepath.Join(t.TempDir(), "peer_model.xlsx")
	require.NoError(t, Build(input, fn))

	f, err := excelize.OpenFile(fn)
	require.NoError(t, err)
	defer f.Close()

	status, err := f.GetCellValue(SheetSources, "B3")
	require.NoError(t, err)
	assert.Equal(t, input.WRDSStatus, status)

	// peer rows start two below the metadata block
	source, err := f.GetCellValue(SheetSources, "C10")
	require.NoError(t, err)
	assert.Equal(t, "Yahoo Finance (ALPHA)", source)

	missing, err := f.GetCellValue(SheetSources, "C11")
	require.NoError(t, err)
	assert.Equal(t, data.MissingSource, missing)
}
