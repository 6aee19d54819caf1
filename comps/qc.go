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
	"math"
	"sort"

	"github.com/penny-vault/pvcomps/data"
)

// Check outcomes written to the QC sheet.
const (
	CheckPass = "PASS"
	CheckFail = "FAIL"
	CheckFlag = "FLAG"
)

// QC thresholds. EV must reconcile with market cap + net debt within
// 5%; a multiple beyond the scale bounds almost always means the
// statement values and the market values are in different units.
const (
	evReconTolerance = 0.05
	maxSaneEVEBITDA  = 50.0
	maxSaneEVEBIT    = 80.0
	yearRatioUpper   = 10.0
	yearRatioLower   = 0.1
)

// QCRow is the quality-control verdict for one peer.
type QCRow struct {
	Company string
	Ticker  string

	EVDelta    *float64
	EVDeltaPct *float64

	LatestEVEBITDA *float64
	LatestEVEBIT   *float64

	EVReconciliation string
	UnitScaling      string
	MissingData      string
	YearConsistency  string
	LossMaking       string

	Explanation string
}

// RunQC evaluates the quality-control rule set for one snapshot.
func RunQC(peer *data.Peer, snapshot *data.Snapshot, years []int, useProviderEV bool) QCRow {
	row := QCRow{Company: peer.Company, Ticker: peer.Ticker}

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	latest := sorted[len(sorted)-1]

	ev := snapshot.EnterpriseValueInput(useProviderEV)

	// EV reconciliation against market cap + net debt
	row.EVReconciliation = CheckFail
	if ev != nil && snapshot.MarketCap != nil && snapshot.NetDebt != nil && *ev != 0 {
		rebuilt := *snapshot.MarketCap + *snapshot.NetDebt
		delta := *ev - rebuilt
		pct := delta / *ev
		row.EVDelta = &delta
		row.EVDeltaPct = &pct
		if math.Abs(pct) <= evReconTolerance {
			row.EVReconciliation = CheckPass
		}
	}

	// scale sanity on the latest year's multiples
	row.LatestEVEBITDA = Multiple(ev, yearValue(snapshot.EBITDA, latest))
	row.LatestEVEBIT = Multiple(ev, yearValue(snapshot.EBIT, latest))

	scaleFlag := (row.LatestEVEBITDA != nil && math.Abs(*row.LatestEVEBITDA) > maxSaneEVEBITDA) ||
		(row.LatestEVEBIT != nil && math.Abs(*row.LatestEVEBIT) > maxSaneEVEBIT)

	row.UnitScaling = CheckPass
	row.Explanation = "No immediate scaling anomaly"
	if scaleFlag {
		row.UnitScaling = CheckFail
		row.Explanation = "Likely unit mismatch in EBITDA/EBIT"
	}

	// missing base fields, missing metrics, zero denominators
	row.MissingData = CheckPass
	if snapshot.MarketCap == nil || snapshot.EnterpriseValue == nil ||
		snapshot.NetDebt == nil || snapshot.Beta == nil {
		row.MissingData = CheckFail
	}

	// a reported zero revenue is kept as data; the zero test
	// applies to EBITDA and EBIT only
	for _, year := range sorted {
		if _, ok := snapshot.Revenue[year]; !ok {
			row.MissingData = CheckFail
		}
		if missingOrZero(snapshot.EBITDA, year) ||
			missingOrZero(snapshot.EBIT, year) {
			row.MissingData = CheckFail
		}
	}

	// year-over-year EBITDA consistency across adjacent fiscal years
	row.YearConsistency = CheckPass
	for i := 1; i < len(sorted); i++ {
		prior, okPrior := snapshot.EBITDA[sorted[i-1]]
		current, okCurrent := snapshot.EBITDA[sorted[i]]
		if !okPrior || !okCurrent || prior == 0 {
			continue
		}
		ratio := math.Abs(current / prior)
		if ratio > yearRatioUpper || ratio < yearRatioLower {
			row.YearConsistency = CheckFail
		}
	}

	// loss-making companies distort EV/EBIT; flag, don't fail
	row.LossMaking = CheckPass
	for _, year := range sorted {
		if ebit, ok := snapshot.EBIT[year]; ok && ebit < 0 {
			row.LossMaking = CheckFlag
		}
	}

	return row
}

func missingOrZero(grid map[int]float64, year int) bool {
	v, ok := grid[year]
	return !ok || v == 0
}
