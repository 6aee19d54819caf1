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

// Package wacc estimates the subject company's weighted average cost
// of capital from peer betas: unlever each selected peer's equity
// beta at its own capital structure (Hamada), relever the median at
// the target structure, then build CAPM cost of equity and the
// blended rate.
package wacc

import (
	"github.com/penny-vault/pvcomps/comps"
	"github.com/penny-vault/pvcomps/data"
)

// Assumptions are the cost-of-capital inputs. Rates are decimals
// (0.03 = 3%). The note fields carry methodology text through to the
// workbook.
type Assumptions struct {
	RiskFreeRate          float64
	EquityRiskPremium     float64
	SmallFirmPremium      float64
	MarginalTaxRate       float64
	PreTaxCostOfDebt      float64
	TargetDebtOverEquity  float64
	PreferredEquityWeight float64

	BetaHorizon      string
	BetaFrequency    string
	BetaIndex        string
	CostOfDebtMethod string
	ERPSourceNote    string
	SFPSourceNote    string
}

// PeerBeta is the unlevering worksheet line for one peer.
type PeerBeta struct {
	Company  string
	Ticker   string
	Selected bool
	CoreSet  bool

	Levered      *float64
	NetDebt      *float64
	MarketCap    *float64
	DebtToEquity *float64
	Unlevered    *float64
}

// Result is the full WACC calculation chain.
type Result struct {
	MeanLevered     *float64
	MedianLevered   *float64
	MeanUnlevered   *float64
	MedianUnlevered *float64
	MeanDE          *float64
	MedianDE        *float64

	ReleveredBeta      float64
	CostOfEquity       float64
	AfterTaxCostOfDebt float64
	DebtWeight         float64
	EquityWeight       float64
	WACC               float64
}

// Unlever strips each peer's capital structure out of its equity
// beta: betaU = betaL / (1 + (1-t) * D/E). Rows with missing inputs
// keep nil fields so the workbook shows the gap.
func Unlever(peers []*data.Peer, snapshots map[string]*data.Snapshot, taxRate float64) []PeerBeta {
	rows := make([]PeerBeta, 0, len(peers))

	for _, peer := range peers {
		if peer.IsSubject() {
			continue
		}

		row := PeerBeta{
			Company:  peer.Company,
			Ticker:   peer.Ticker,
			Selected: peer.IsSelected(),
			CoreSet:  peer.IsCore(),
		}

		if snapshot, ok := snapshots[peer.Ticker]; ok {
			row.Levered = snapshot.Beta
			row.NetDebt = snapshot.NetDebt
			row.MarketCap = snapshot.MarketCap
			row.DebtToEquity = snapshot.DebtToEquity()

			if row.Levered != nil && row.DebtToEquity != nil {
				unlevered := *row.Levered / (1 + (1-taxRate)**row.DebtToEquity)
				row.Unlevered = &unlevered
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// Compute relevers the selected peers' median unlevered beta at the
// target capital structure and derives the CAPM cost of equity and
// the blended WACC.
func Compute(betas []PeerBeta, assumptions Assumptions) Result {
	var levered, unlevered, des []float64
	for _, row := range betas {
		if !row.Selected {
			continue
		}
		if row.Levered != nil {
			levered = append(levered, *row.Levered)
		}
		if row.Unlevered != nil {
			unlevered = append(unlevered, *row.Unlevered)
		}
		if row.DebtToEquity != nil {
			des = append(des, *row.DebtToEquity)
		}
	}

	result := Result{
		MeanLevered:     comps.Mean(levered),
		MedianLevered:   comps.Median(levered),
		MeanUnlevered:   comps.Mean(unlevered),
		MedianUnlevered: comps.Median(unlevered),
		MeanDE:          comps.Mean(des),
		MedianDE:        comps.Median(des),
	}

	medianUnlevered := 0.0
	if result.MedianUnlevered != nil {
		medianUnlevered = *result.MedianUnlevered
	}

	tax := assumptions.MarginalTaxRate
	targetDE := assumptions.TargetDebtOverEquity

	result.ReleveredBeta = medianUnlevered * (1 + (1-tax)*targetDE)
	result.CostOfEquity = assumptions.RiskFreeRate +
		result.ReleveredBeta*assumptions.EquityRiskPremium +
		assumptions.SmallFirmPremium
	result.AfterTaxCostOfDebt = assumptions.PreTaxCostOfDebt * (1 - tax)

	result.DebtWeight = targetDE / (1 + targetDE)
	result.EquityWeight = 1 - result.DebtWeight - assumptions.PreferredEquityWeight
	result.WACC = result.EquityWeight*result.CostOfEquity + result.DebtWeight*result.AfterTaxCostOfDebt

	return result
}
