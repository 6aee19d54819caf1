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

// Package workbook renders the peer model to an xlsx file: the peer
// table with per-year multiples and summary statistics, the WACC
// build-up, source attribution, the QC report, peer rationale, and a
// clean overview of the headline numbers.
package workbook

import (
	"fmt"
	"time"

	"github.com/penny-vault/pvcomps/data"
	"github.com/penny-vault/pvcomps/wacc"
	"github.com/xuri/excelize/v2"
)

// Sheet names in workbook order.
const (
	SheetPeerTable     = "Peer_Table"
	SheetWACCModel     = "WACC_Model"
	SheetSources       = "Sources_and_AsOf"
	SheetQCReport      = "QC_Report"
	SheetPeerRationale = "Peer_Rationale"
	SheetCleanOverview = "Clean_Overview"
)

// Input carries everything the workbook needs. Snapshots are keyed by
// roster ticker; peers without a snapshot still get a row so gaps are
// visible to the analyst.
type Input struct {
	Peers     []*data.Peer
	Snapshots map[string]*data.Snapshot

	Years         []int
	UseProviderEV bool

	// computed-EV toggles, recorded on the Sources sheet
	IncludeMinorityInterest bool
	IncludeLeases           bool

	Assumptions wacc.Assumptions

	AsOf       time.Time
	Provider   string
	WRDSStatus string
}

type builder struct {
	f     *excelize.File
	input *Input

	headerStyle   int
	boldStyle     int
	multipleStyle int
	percentStyle  int
	moneyStyle    int
	negativeStyle int
}

// Build writes the workbook to fn.
func Build(input *Input, fn string) error {
	b := &builder{
		f:     excelize.NewFile(),
		input: input,
	}
	defer b.f.Close()

	if err := b.styles(); err != nil {
		return fmt.Errorf("creating styles: %w", err)
	}

	if err := b.f.SetSheetName("Sheet1", SheetPeerTable); err != nil {
		return err
	}

	for _, name := range []string{SheetWACCModel, SheetSources, SheetQCReport, SheetPeerRationale, SheetCleanOverview} {
		if _, err := b.f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := b.peerTable(); err != nil {
		return fmt.Errorf("building %s: %w", SheetPeerTable, err)
	}

	if err := b.waccModel(); err != nil {
		return fmt.Errorf("building %s: %w", SheetWACCModel, err)
	}

	if err := b.sources(); err != nil {
		return fmt.Errorf("building %s: %w", SheetSources, err)
	}

	if err := b.qcReport(); err != nil {
		return fmt.Errorf("building %s: %w", SheetQCReport, err)
	}

	if err := b.peerRationale(); err != nil {
		return fmt.Errorf("building %s: %w", SheetPeerRationale, err)
	}

	if err := b.cleanOverview(); err != nil {
		return fmt.Errorf("building %s: %w", SheetCleanOverview, err)
	}

	// header row stays visible on every sheet
	sheets := b.f.GetSheetList()
	for _, sheet := range sheets {
		if err := b.f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	return b.f.SaveAs(fn)
}

func (b *builder) styles() error {
	var err error

	if b.headerStyle, err = b.f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return err
	}

	if b.boldStyle, err = b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return err
	}

	multipleFmt := "0.00x"
	if b.multipleStyle, err = b.f.NewStyle(&excelize.Style{CustomNumFmt: &multipleFmt}); err != nil {
		return err
	}

	percentFmt := "0.0%"
	if b.percentStyle, err = b.f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt}); err != nil {
		return err
	}

	moneyFmt := "#,##0.0"
	if b.moneyStyle, err = b.f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return err
	}

	// conditional format target: negative multiples in red
	negativeFmt := "0.00x"
	if b.negativeStyle, err = b.f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Color: "9C0006"},
		CustomNumFmt: &negativeFmt,
	}); err != nil {
		return err
	}

	return nil
}

// header writes a styled header row starting at column 1.
func (b *builder) header(sheet string, row int, titles []string) error {
	for i, title := range titles {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), row)
	if err != nil {
		return err
	}

	return b.f.SetCellStyle(sheet, first, last, b.headerStyle)
}

// setCell writes v at (col, row); nil pointers leave the cell empty so
// missing data is visible as a gap.
func (b *builder) setCell(sheet string, col, row int, v any) error {
	switch value := v.(type) {
	case *float64:
		if value == nil {
			return nil
		}
		v = *value
	case nil:
		return nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	return b.f.SetCellValue(sheet, cell, v)
}

// setRow writes values left to right starting at column 1.
func (b *builder) setRow(sheet string, row int, values []any) error {
	for i, v := range values {
		if err := b.setCell(sheet, i+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

// styleCols applies a style to a column range across data rows.
func (b *builder) styleCols(sheet string, firstCol, lastCol, firstRow, lastRow, styleID int) error {
	if lastRow < firstRow {
		return nil
	}

	first, err := excelize.CoordinatesToCellName(firstCol, firstRow)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(lastCol, lastRow)
	if err != nil {
		return err
	}

	return b.f.SetCellStyle(sheet, first, last, styleID)
}
