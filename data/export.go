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
package data

import "time"

// SnapshotRow is a flattened, per-fiscal-year view of a snapshot used
// for CSV and parquet exports. Optional fields stay pointers so a
// missing value exports as empty/NULL rather than zero.
type SnapshotRow struct {
	Company         string   `csv:"company" parquet:"name=company, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker          string   `csv:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	VendorTicker    string   `csv:"vendor_ticker" parquet:"name=vendor_ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Currency        string   `csv:"currency" parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SharePrice      *float64 `csv:"share_price" parquet:"name=share_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarketCap       *float64 `csv:"market_cap_ccy_m" parquet:"name=market_cap_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	EnterpriseValue *float64 `csv:"enterprise_value_ccy_m" parquet:"name=enterprise_value_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrossDebt       *float64 `csv:"gross_debt_ccy_m" parquet:"name=gross_debt_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Cash            *float64 `csv:"cash_ccy_m" parquet:"name=cash_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetDebt         *float64 `csv:"net_debt_ccy_m" parquet:"name=net_debt_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	Beta            *float64 `csv:"equity_beta" parquet:"name=equity_beta, type=DOUBLE, repetitiontype=OPTIONAL"`
	FXToEUR         *float64 `csv:"fx_to_eur" parquet:"name=fx_to_eur, type=DOUBLE, repetitiontype=OPTIONAL"`
	FiscalYear      int32    `csv:"fiscal_year" parquet:"name=fiscal_year, type=INT32"`
	Revenue         *float64 `csv:"revenue_ccy_m" parquet:"name=revenue_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBITDA          *float64 `csv:"ebitda_ccy_m" parquet:"name=ebitda_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBIT            *float64 `csv:"ebit_ccy_m" parquet:"name=ebit_ccy_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	FetchedAt       string   `csv:"fetched_at" parquet:"name=fetched_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Flatten expands snapshots into one export row per fiscal year.
func Flatten(snapshots []*Snapshot, years []int) []*SnapshotRow {
	rows := make([]*SnapshotRow, 0, len(snapshots)*len(years))

	for _, snapshot := range snapshots {
		for _, year := range years {
			row := &SnapshotRow{
				Company:         snapshot.Company,
				Ticker:          snapshot.Ticker,
				VendorTicker:    snapshot.VendorTicker,
				Currency:        snapshot.Currency,
				SharePrice:      snapshot.SharePrice,
				MarketCap:       snapshot.MarketCap,
				EnterpriseValue: snapshot.EnterpriseValue,
				GrossDebt:       snapshot.GrossDebt,
				Cash:            snapshot.Cash,
				NetDebt:         snapshot.NetDebt,
				Beta:            snapshot.Beta,
				FXToEUR:         snapshot.FXToEUR,
				FiscalYear:      int32(year),
				FetchedAt:       snapshot.FetchedAt.UTC().Format(time.RFC3339),
			}

			if v, ok := snapshot.Revenue[year]; ok {
				row.Revenue = &v
			}
			if v, ok := snapshot.EBITDA[year]; ok {
				row.EBITDA = &v
			}
			if v, ok := snapshot.EBIT[year]; ok {
				row.EBIT = &v
			}

			rows = append(rows, row)
		}
	}

	return rows
}
