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
package universe

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvcomps/data"
	"github.com/rs/zerolog/log"
)

// Override pins a single value over anything a provider returned.
// Scalar fields ignore the year; the per-year metrics (revenue,
// ebitda, ebit) require one.
type Override struct {
	Ticker string   `csv:"ticker"`
	Field  string   `csv:"field"`
	Year   int      `csv:"year,omitempty"`
	Value  *float64 `csv:"value"`
	Source string   `csv:"source,omitempty"`
}

// LoadOverrides reads the analyst override CSV. A missing file is not
// an error; overrides are optional.
func LoadOverrides(fn string) ([]*Override, error) {
	fh, err := os.Open(fn)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer fh.Close()

	var overrides []*Override
	if err := gocsv.UnmarshalFile(fh, &overrides); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", fn, err)
	}

	return overrides, nil
}

// Apply walks the override list and patches the matching snapshots.
// Overrides always win over provider data; rows without a value or
// with an unknown ticker/field are skipped with a warning.
func Apply(overrides []*Override, snapshots map[string]*data.Snapshot) {
	for _, override := range overrides {
		snapshot, ok := snapshots[override.Ticker]
		if !ok {
			log.Warn().Str("Ticker", override.Ticker).Msg("override references a ticker not in the roster")
			continue
		}

		if override.Value == nil {
			continue
		}

		value := *override.Value
		source := override.Source
		if source == "" {
			source = "Analyst override"
		}

		switch override.Field {
		case "market_cap_ccy_m":
			snapshot.MarketCap = &value
			snapshot.Sources.MarketCap = source
		case "enterprise_value_ccy_m":
			snapshot.EnterpriseValue = &value
			snapshot.Sources.EnterpriseValue = source
		case "gross_debt_ccy_m":
			snapshot.GrossDebt = &value
		case "cash_ccy_m":
			snapshot.Cash = &value
		case "net_debt_ccy_m":
			snapshot.NetDebt = &value
			snapshot.Sources.NetDebt = source
		case "equity_beta":
			snapshot.Beta = &value
			snapshot.Sources.Beta = source
		case "share_price_ccy":
			snapshot.SharePrice = &value
		case "fx_to_eur":
			snapshot.FXToEUR = &value
		case "revenue", "ebitda", "ebit":
			if override.Year == 0 {
				log.Warn().Str("Ticker", override.Ticker).Str("Field", override.Field).
					Msg("metric override is missing a fiscal year")
				continue
			}
			switch override.Field {
			case "revenue":
				snapshot.Revenue[override.Year] = value
			case "ebitda":
				snapshot.EBITDA[override.Year] = value
			case "ebit":
				snapshot.EBIT[override.Year] = value
			}
			snapshot.Sources.Financials = source
		default:
			log.Warn().Str("Ticker", override.Ticker).Str("Field", override.Field).
				Msg("unknown override field")
		}
	}
}
