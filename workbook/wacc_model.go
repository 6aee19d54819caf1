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
	"github.com/penny-vault/pvcomps/wacc"
	"github.com/xuri/excelize/v2"
)

func (b *builder) waccModel() error {
	input := b.input
	assumptions := input.Assumptions

	if err := b.header(SheetWACCModel, 1, []string{
		"Company", "Ticker", "Selected (1/0)", "Core Set (1/0)", "Levered Beta",
		"Net Debt (CCY m)", "Market Cap (CCY m)", "D/E", "Tax Rate", "Unlevered Beta",
	}); err != nil {
		return err
	}

	betas := wacc.Unlever(input.Peers, input.Snapshots, assumptions.MarginalTaxRate)
	for idx, beta := range betas {
		row := idx + 2
		if err := b.setRow(SheetWACCModel, row, []any{
			beta.Company,
			beta.Ticker,
			boolToInt(beta.Selected),
			boolToInt(beta.CoreSet),
			beta.Levered,
			beta.NetDebt,
			beta.MarketCap,
			beta.DebtToEquity,
			assumptions.MarginalTaxRate,
			beta.Unlevered,
		}); err != nil {
			return err
		}
	}

	result := wacc.Compute(betas, assumptions)

	evMode := "Computed EV = Market Cap + Net Debt"
	if input.UseProviderEV {
		evMode = "Provider EV as truth"
	}

	methodologyStart := len(betas) + 4
	methodology := []struct {
		key   string
		value any
	}{
		{"Beta methodology - horizon", assumptions.BetaHorizon},
		{"Beta methodology - frequency", assumptions.BetaFrequency},
		{"Beta methodology - index", assumptions.BetaIndex},
		{"Debt definition", "Net debt (gross debt - cash)"},
		{"EV definition mode", evMode},
		{"Mean levered beta (selected)", result.MeanLevered},
		{"Median levered beta (selected)", result.MedianLevered},
		{"Mean unlevered beta (selected)", result.MeanUnlevered},
		{"Median unlevered beta (selected)", result.MedianUnlevered},
	}

	for idx, entry := range methodology {
		row := methodologyStart + idx
		if err := b.setCell(SheetWACCModel, 1, row, entry.key); err != nil {
			return err
		}
		if err := b.setCell(SheetWACCModel, 2, row, entry.value); err != nil {
			return err
		}
	}

	calcStart := methodologyStart + len(methodology) + 2

	if err := b.setCell(SheetWACCModel, 1, calcStart-1, "WACC Calculation"); err != nil {
		return err
	}
	titleCell, err := excelize.CoordinatesToCellName(1, calcStart-1)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SheetWACCModel, titleCell, titleCell, b.boldStyle); err != nil {
		return err
	}

	calc := []struct {
		key     string
		value   any
		percent bool
	}{
		{"Risk-free rate", assumptions.RiskFreeRate, true},
		{"Market risk premium", assumptions.EquityRiskPremium, true},
		{"Small firm premium", assumptions.SmallFirmPremium, true},
		{"Marginal tax rate", assumptions.MarginalTaxRate, true},
		{"Cost of debt (pre-tax)", assumptions.PreTaxCostOfDebt, true},
		{"Target D/E", assumptions.TargetDebtOverEquity, false},
		{"Relevered beta (median unlevered)", result.ReleveredBeta, false},
		{"Cost of equity (CAPM + SFP)", result.CostOfEquity, true},
		{"Cost of debt (after-tax)", result.AfterTaxCostOfDebt, true},
		{"Debt weight", result.DebtWeight, true},
		{"Equity weight", result.EquityWeight, true},
		{"WACC", result.WACC, true},
		{"Cost of debt methodology", assumptions.CostOfDebtMethod, false},
		{"ERP source note", assumptions.ERPSourceNote, false},
		{"Small firm premium source note", assumptions.SFPSourceNote, false},
	}

	for idx, entry := range calc {
		row := calcStart + idx
		if err := b.setCell(SheetWACCModel, 1, row, entry.key); err != nil {
			return err
		}
		if err := b.setCell(SheetWACCModel, 2, row, entry.value); err != nil {
			return err
		}
		if entry.percent {
			if err := b.styleCols(SheetWACCModel, 2, 2, row, row, b.percentStyle); err != nil {
				return err
			}
		}
	}

	return b.f.SetColWidth(SheetWACCModel, "A", "J", 22)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
