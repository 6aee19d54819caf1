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

	"github.com/penny-vault/pvcomps/comps"
	"github.com/penny-vault/pvcomps/data"
	"github.com/xuri/excelize/v2"
)

// number of columns before the per-year metric blocks
const peerBaseCols = 16

func peerTableColumns(years []int) []string {
	columns := []string{
		"Company",
		"Ticker",
		"Selected (1/0)",
		"Core Set (1/0)",
		"Peer Status",
		"Segment Fit",
		"Selection rationale",
		"Currency",
		"Share Price (CCY)",
		"Market Cap (CCY m)",
		"Enterprise Value (CCY m)",
		"Gross Debt (CCY m)",
		"Cash (CCY m)",
		"Net Debt (CCY m)",
		"Equity Beta",
		"FX to EUR",
	}

	for _, year := range years {
		columns = append(columns,
			fmt.Sprintf("Revenue %d (CCY m)", year),
			fmt.Sprintf("EBITDA %d (CCY m)", year),
			fmt.Sprintf("EBIT %d (CCY m)", year),
			fmt.Sprintf("EV/Sales %d", year),
			fmt.Sprintf("EV/EBITDA %d", year),
			fmt.Sprintf("EV/EBIT %d", year),
		)
	}

	return columns
}

func (b *builder) peerTable() error {
	input := b.input
	years := input.Years
	columns := peerTableColumns(years)

	if err := b.header(SheetPeerTable, 1, columns); err != nil {
		return err
	}

	for idx, peer := range input.Peers {
		row := idx + 2
		snapshot, ok := input.Snapshots[peer.Ticker]
		if !ok {
			snapshot = data.NewSnapshot(peer)
		}

		values := []any{
			peer.Company,
			peer.Ticker,
			peer.Selected,
			peer.CoreSet,
			peer.PeerStatus,
			peer.SegmentFit,
			peer.Rationale,
			snapshot.Currency,
			snapshot.SharePrice,
			snapshot.MarketCap,
			snapshot.EnterpriseValueInput(input.UseProviderEV),
			snapshot.GrossDebt,
			snapshot.Cash,
			snapshot.NetDebt,
			snapshot.Beta,
			snapshot.FXToEUR,
		}

		set := comps.Compute(snapshot, years, input.UseProviderEV)
		for _, year := range years {
			var revenue, ebitda, ebit *float64
			if v, ok := snapshot.Revenue[year]; ok {
				revenue = &v
			}
			if v, ok := snapshot.EBITDA[year]; ok {
				ebitda = &v
			}
			if v, ok := snapshot.EBIT[year]; ok {
				ebit = &v
			}

			values = append(values, revenue, ebitda, ebit,
				set.EVSales[year], set.EVEBITDA[year], set.EVEBIT[year])
		}

		if err := b.setRow(SheetPeerTable, row, values); err != nil {
			return err
		}
	}

	lastPeerRow := len(input.Peers) + 1

	// money format on the CCY columns; multiple format plus a
	// red-negative conditional format on each year's multiple block
	if err := b.styleCols(SheetPeerTable, 10, 14, 2, lastPeerRow, b.moneyStyle); err != nil {
		return err
	}

	for yearIdx := range years {
		metricCol := peerBaseCols + yearIdx*6 + 1
		if err := b.styleCols(SheetPeerTable, metricCol, metricCol+2, 2, lastPeerRow, b.moneyStyle); err != nil {
			return err
		}

		multipleCol := metricCol + 3
		if err := b.styleCols(SheetPeerTable, multipleCol, multipleCol+2, 2, lastPeerRow, b.multipleStyle); err != nil {
			return err
		}

		first, err := excelize.CoordinatesToCellName(multipleCol, 2)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(multipleCol+2, lastPeerRow)
		if err != nil {
			return err
		}

		if err := b.f.SetConditionalFormat(SheetPeerTable, fmt.Sprintf("%s:%s", first, last),
			[]excelize.ConditionalFormatOptions{
				{Type: "cell", Criteria: "less than", Value: "0", Format: b.negativeStyle},
			}); err != nil {
			return err
		}
	}

	lastColName, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetPeerTable, "A", lastColName, 15); err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetPeerTable, "A", "A", 24); err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetPeerTable, "G", "G", 48); err != nil {
		return err
	}

	return b.summaryBlock(lastPeerRow)
}

// summaryBlock writes core vs extended mean/median statistics a few
// rows below the peer rows.
func (b *builder) summaryBlock(lastPeerRow int) error {
	input := b.input
	start := lastPeerRow + 3

	if err := b.setCell(SheetPeerTable, 1, start, "Summary Statistics (Selected peers)"); err != nil {
		return err
	}
	titleCell, err := excelize.CoordinatesToCellName(1, start)
	if err != nil {
		return err
	}
	if err := b.f.SetCellStyle(SheetPeerTable, titleCell, titleCell, b.boldStyle); err != nil {
		return err
	}

	if err := b.header(SheetPeerTable, start+1, []string{
		"Metric", "Core Set Median", "Core Set Mean", "Extended Set Median", "Extended Set Mean",
	}); err != nil {
		return err
	}

	rows := comps.Summarize(input.Peers, input.Snapshots, input.Years, input.UseProviderEV)
	for idx, summary := range rows {
		row := start + 2 + idx
		if err := b.setRow(SheetPeerTable, row, []any{
			summary.Metric, summary.CoreMedian, summary.CoreMean, summary.ExtMedian, summary.ExtMean,
		}); err != nil {
			return err
		}
	}

	return b.styleCols(SheetPeerTable, 2, 5, start+2, start+1+len(rows), b.multipleStyle)
}
