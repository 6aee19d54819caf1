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

// MissingSource marks a field that no provider could populate. The
// string is written verbatim to the Sources sheet so gaps are visible
// in the final workbook.
const MissingSource = "MISSING SOURCE"

// SourceSet records per-field attribution for a snapshot. Each entry
// is either a provider tag like "Yahoo Finance (CGNX)" or
// MissingSource.
type SourceSet struct {
	MarketCap       string
	EnterpriseValue string
	NetDebt         string
	Beta            string
	Financials      string
}

// NewSourceSet returns a SourceSet with every field marked missing.
func NewSourceSet() SourceSet {
	return SourceSet{
		MarketCap:       MissingSource,
		EnterpriseValue: MissingSource,
		NetDebt:         MissingSource,
		Beta:            MissingSource,
		Financials:      MissingSource,
	}
}

// Snapshot holds everything fetched for one roster entry. Scalar
// market fields are pointers so a missing value is distinguishable
// from zero; currency amounts are in millions of the trading currency
// unless the field name says otherwise.
type Snapshot struct {
	Company      string
	Ticker       string
	VendorTicker string
	Currency     string

	SharePrice      *float64 // per share, trading currency
	MarketCap       *float64
	EnterpriseValue *float64 // as reported by the provider
	GrossDebt       *float64
	Cash            *float64
	NetDebt         *float64
	Beta            *float64
	FXToEUR         *float64 // spot rate, 1 unit of trading currency in EUR

	// canonical fiscal-year metric grid; absent key means the value
	// could not be sourced
	Revenue map[int]float64
	EBITDA  map[int]float64
	EBIT    map[int]float64

	Sources   SourceSet
	FetchedAt time.Time
}

// NewSnapshot returns an empty snapshot for the given roster entry.
func NewSnapshot(peer *Peer) *Snapshot {
	return &Snapshot{
		Company:      peer.Company,
		Ticker:       peer.Ticker,
		VendorTicker: peer.Ticker,
		Revenue:      make(map[int]float64),
		EBITDA:       make(map[int]float64),
		EBIT:         make(map[int]float64),
		Sources:      NewSourceSet(),
	}
}

// EnterpriseValueInput returns the EV used for multiples. When
// useProviderEV is set the provider figure is taken as truth;
// otherwise EV is rebuilt as market cap + net debt.
func (snapshot *Snapshot) EnterpriseValueInput(useProviderEV bool) *float64 {
	if useProviderEV {
		return snapshot.EnterpriseValue
	}

	if snapshot.MarketCap == nil || snapshot.NetDebt == nil {
		return nil
	}

	ev := *snapshot.MarketCap + *snapshot.NetDebt
	return &ev
}

// DebtToEquity returns net debt / market cap, the D/E used for beta
// unlevering. Nil when either input is missing or market cap is zero.
func (snapshot *Snapshot) DebtToEquity() *float64 {
	if snapshot.MarketCap == nil || *snapshot.MarketCap == 0 || snapshot.NetDebt == nil {
		return nil
	}

	de := *snapshot.NetDebt / *snapshot.MarketCap
	return &de
}

// MarketCapEUR converts market cap to EUR millions using the spot FX
// rate, nil when either input is missing.
func (snapshot *Snapshot) MarketCapEUR() *float64 {
	return snapshot.toEUR(snapshot.MarketCap)
}

// NetDebtEUR converts net debt to EUR millions using the spot FX
// rate, nil when either input is missing.
func (snapshot *Snapshot) NetDebtEUR() *float64 {
	return snapshot.toEUR(snapshot.NetDebt)
}

func (snapshot *Snapshot) toEUR(v *float64) *float64 {
	if v == nil || snapshot.FXToEUR == nil {
		return nil
	}

	eur := *v * *snapshot.FXToEUR
	return &eur
}

// HasFinancials reports whether any fiscal-year metric was sourced.
func (snapshot *Snapshot) HasFinancials() bool {
	return len(snapshot.Revenue) > 0 || len(snapshot.EBITDA) > 0 || len(snapshot.EBIT) > 0
}
