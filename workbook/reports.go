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
	"fmt"
	"sort"
	"time"

	"github.com/penny-vault/pvcomps/comps"
	"github.com/penny-vault/pvcomps/data"
	"github.com/penny-vault/pvcomps/wacc"
	"github.com/xuri/excelize/v2"
)

// sources writes run metadata and per-peer source attribution so every
// workbook figure can be traced to where it came from.
func (b *builder) sources() error {
	input := b.input

	evMode := "Computed EV"
	if input.UseProviderEV {
		evMode = "Provider EV"
	}

	meta := []struct {
		key   string
		value any
	}{
		{"As-of timestamp (UTC)", input.AsOf.UTC().Format(time.RFC3339)},
		{"Primary provider", input.Provider},
		{"WRDS status", input.WRDSStatus},
		{"FX assumption", "Spot FX (latest close) to EUR"},
		{"EV mode", evMode},
		{"Include minority interest", input.IncludeMinorityInterest},
		{"Include leases", input.IncludeLeases},
	}

	for idx, entry := range meta {
		row := idx + 1
		if err := b.setCell(SheetSources, 1, row, entry.key); err != nil {
			return err
		}
		if err := b.setCell(SheetSources, 2, row, entry.value); err != nil {
			return err
		}
	}

	headerRow := len(meta) + 2
	years := append([]int(nil), input.Years...)
	sort.Ints(years)
	yearSpan := ""
	for i, year := range years {
		if i > 0 {
			yearSpan += "/"
		}
		yearSpan += fmt.Sprintf("%d", year)
	}

	if err := b.header(SheetSources, headerRow, []string{
		"Company", "Ticker", "Source: Market Cap", "Source: EV",
		"Source: Net Debt / Gross Debt & Cash", "Source: Beta",
		fmt.Sprintf("Source: Financials (%s)", yearSpan),
	}); err != nil {
		return err
	}

	for idx, peer := range input.Peers {
		row := headerRow + 1 + idx
		snapshot, ok := input.Snapshots[peer.Ticker]
		if !ok {
			snapshot = data.NewSnapshot(peer)
		}

		if err := b.setRow(SheetSources, row, []any{
			peer.Company,
			peer.Ticker,
			snapshot.Sources.MarketCap,
			snapshot.Sources.EnterpriseValue,
			snapshot.Sources.NetDebt,
			snapshot.Sources.Beta,
			snapshot.Sources.Financials,
		}); err != nil {
			return err
		}
	}

	return b.f.SetColWidth(SheetSources, "A", "G", 32)
}

func (b *builder) qcReport() error {
	input := b.input

	years := append([]int(nil), input.Years...)
	sort.Ints(years)
	latest := years[len(years)-1]

	if err := b.header(SheetQCReport, 1, []string{
		"Company", "Ticker", "EV Reconciliation Status", "EV Delta (CCY m)", "EV Delta %",
		"Unit/Scaling Status", "Missing/Denominator Status", "Year Consistency Status",
		"Loss-making Status",
		fmt.Sprintf("%d EV/EBITDA", latest),
		fmt.Sprintf("%d EV/EBIT", latest),
		"Explanation",
	}); err != nil {
		return err
	}

	for idx, peer := range input.Peers {
		row := idx + 2
		snapshot, ok := input.Snapshots[peer.Ticker]
		if !ok {
			snapshot = data.NewSnapshot(peer)
		}

		qc := comps.RunQC(peer, snapshot, input.Years, input.UseProviderEV)

		if err := b.setRow(SheetQCReport, row, []any{
			qc.Company,
			qc.Ticker,
			qc.EVReconciliation,
			qc.EVDelta,
			qc.EVDeltaPct,
			qc.UnitScaling,
			qc.MissingData,
			qc.YearConsistency,
			qc.LossMaking,
			qc.LatestEVEBITDA,
			qc.LatestEVEBIT,
			qc.Explanation,
		}); err != nil {
			return err
		}
	}

	lastRow := len(input.Peers) + 1
	if err := b.styleCols(SheetQCReport, 5, 5, 2, lastRow, b.percentStyle); err != nil {
		return err
	}
	if err := b.styleCols(SheetQCReport, 10, 11, 2, lastRow, b.multipleStyle); err != nil {
		return err
	}

	return b.f.SetColWidth(SheetQCReport, "A", "L", 20)
}

func (b *builder) peerRationale() error {
	input := b.input

	if err := b.header(SheetPeerRationale, 1, []string{
		"Company", "Ticker", "Segment Fit", "Role (Core/Segment-only/Excluded)", "Selected (1/0)", "Rationale",
	}); err != nil {
		return err
	}

	for idx, peer := range input.Peers {
		row := idx + 2
		if err := b.setRow(SheetPeerRationale, row, []any{
			peer.Company,
			peer.Ticker,
			peer.SegmentFit,
			peer.PeerStatus,
			peer.Selected,
			peer.Rationale,
		}); err != nil {
			return err
		}
	}

	if err := b.f.SetColWidth(SheetPeerRationale, "A", "E", 22); err != nil {
		return err
	}
	return b.f.SetColWidth(SheetPeerRationale, "F", "F", 60)
}

// cleanOverview is the headline page: the WACC chain on the left, the
// selected-peer beta table on the right.
func (b *builder) cleanOverview() error {
	input := b.input
	assumptions := input.Assumptions

	betas := wacc.Unlever(input.Peers, input.Snapshots, assumptions.MarginalTaxRate)
	result := wacc.Compute(betas, assumptions)

	if err := b.setCell(SheetCleanOverview, 1, 1, "Weighted Average Cost of Capital"); err != nil {
		return err
	}
	if err := b.setCell(SheetCleanOverview, 5, 1, "PEER GROUP (selected only)"); err != nil {
		return err
	}
	for _, cell := range []string{"A1", "E1"} {
		if err := b.f.SetCellStyle(SheetCleanOverview, cell, cell, b.boldStyle); err != nil {
			return err
		}
	}

	lines := []struct {
		key     string
		value   any
		percent bool
	}{
		{"Riskfree rate", assumptions.RiskFreeRate, true},
		{"Market risk premium", assumptions.EquityRiskPremium, true},
		{"Small firm premium", assumptions.SmallFirmPremium, true},
		{"Cost of debt (pre-tax)", assumptions.PreTaxCostOfDebt, true},
		{"Marginal tax rate", assumptions.MarginalTaxRate, true},
		{"Target D/E", assumptions.TargetDebtOverEquity, false},
		{"Unlevered beta (median)", result.MedianUnlevered, false},
		{"Relevered beta", result.ReleveredBeta, false},
		{"Cost of common equity", result.CostOfEquity, true},
		{"WACC", result.WACC, true},
	}

	for idx, line := range lines {
		row := idx + 3
		if err := b.setCell(SheetCleanOverview, 1, row, line.key); err != nil {
			return err
		}
		if err := b.setCell(SheetCleanOverview, 2, row, line.value); err != nil {
			return err
		}
		if line.percent {
			if err := b.styleCols(SheetCleanOverview, 2, 2, row, row, b.percentStyle); err != nil {
				return err
			}
		}
	}

	for i, title := range []string{"Company", "Levered Beta", "D/E", "Unlevered Beta"} {
		if err := b.setCell(SheetCleanOverview, 5+i, 3, title); err != nil {
			return err
		}
	}
	first, err := excelize.CoordinatesToCellName(5, 3)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(8, 3)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SheetCleanOverview, first, last, b.headerStyle); err != nil {
		return err
	}

	row := 4
	for _, beta := range betas {
		if !beta.Selected {
			continue
		}

		for i, v := range []any{beta.Company, beta.Levered, beta.DebtToEquity, beta.Unlevered} {
			if err := b.setCell(SheetCleanOverview, 5+i, row, v); err != nil {
				return err
			}
		}
		row++
	}

	aggregates := []struct {
		label     string
		levered   *float64
		de        *float64
		unlevered *float64
	}{
		{"Mean", result.MeanLevered, result.MeanDE, result.MeanUnlevered},
		{"Median", result.MedianLevered, result.MedianDE, result.MedianUnlevered},
	}

	for i, agg := range aggregates {
		aggRow := row + 1 + i
		for col, v := range []any{agg.label, agg.levered, agg.de, agg.unlevered} {
			if err := b.setCell(SheetCleanOverview, 5+col, aggRow, v); err != nil {
				return err
			}
		}
	}

	if err := b.setCell(SheetCleanOverview, 5, row+4, "Note: Headline uses medians from selected peers."); err != nil {
		return err
	}

	if err := b.f.SetColWidth(SheetCleanOverview, "A", "B", 26); err != nil {
		return err
	}
	return b.f.SetColWidth(SheetCleanOverview, "E", "H", 20)
}
