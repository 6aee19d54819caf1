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

// Package comps normalizes vendor financial statements onto a
// canonical fiscal-year metric grid and computes trading multiples,
// cross-peer statistics, and the quality-control report.
package comps

import (
	"strings"

	"github.com/penny-vault/pvcomps/data"
)

// StatementLine is one row of a vendor financial statement: the raw
// vendor label and values keyed by fiscal year, in the statement's
// native currency units.
type StatementLine struct {
	Label  string
	Values map[int]float64
}

// Label candidates per canonical metric. Vendors disagree on naming;
// the first label present in the statement wins.
var (
	revenueLabels = []string{"Total Revenue", "TotalRevenue", "Revenue"}
	ebitdaLabels  = []string{"EBITDA", "NormalizedEBITDA"}
	ebitLabels    = []string{"EBIT", "Operating Income", "OperatingIncome"}
	dandaLabels   = []string{
		"Depreciation And Amortization",
		"Depreciation & Amortization",
		"DepreciationAndAmortization",
		"Reconciled Depreciation",
	}
)

// ExtractMetric finds the first statement line whose label matches
// one of the candidates (case-insensitive) and returns its values.
// The candidate order expresses source priority.
func ExtractMetric(lines []StatementLine, labels []string) map[int]float64 {
	byLabel := make(map[string]map[int]float64, len(lines))
	for _, line := range lines {
		key := strings.ToLower(line.Label)
		if _, ok := byLabel[key]; !ok {
			byLabel[key] = line.Values
		}
	}

	for _, label := range labels {
		if values, ok := byLabel[strings.ToLower(label)]; ok {
			return values
		}
	}

	return nil
}

// Normalize maps raw statement lines onto the snapshot's canonical
// Revenue/EBITDA/EBIT grid for the requested fiscal years, scaling
// native units to millions. Where the vendor has no EBITDA row it is
// derived as EBIT + D&A for years carrying both.
func Normalize(snapshot *data.Snapshot, lines []StatementLine, years []int) {
	revenue := ExtractMetric(lines, revenueLabels)
	ebitda := ExtractMetric(lines, ebitdaLabels)
	ebit := ExtractMetric(lines, ebitLabels)

	if len(ebitda) == 0 {
		danda := ExtractMetric(lines, dandaLabels)
		if len(danda) > 0 && len(ebit) > 0 {
			ebitda = make(map[int]float64, len(ebit))
			for year, e := range ebit {
				if d, ok := danda[year]; ok {
					ebitda[year] = e + d
				}
			}
		}
	}

	for _, year := range years {
		if v, ok := revenue[year]; ok {
			snapshot.Revenue[year] = toMillions(v)
		}
		if v, ok := ebitda[year]; ok {
			snapshot.EBITDA[year] = toMillions(v)
		}
		if v, ok := ebit[year]; ok {
			snapshot.EBIT[year] = toMillions(v)
		}
	}
}

func toMillions(v float64) float64 {
	return v / 1_000_000
}
