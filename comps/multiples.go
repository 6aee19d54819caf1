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
	"fmt"
	"math"
	"sort"

	"github.com/penny-vault/pvcomps/data"
)

// Multiple divides EV by a metric, nil-safe: a missing EV or a
// missing/zero denominator yields no multiple rather than an outlier.
func Multiple(ev *float64, denom *float64) *float64 {
	if ev == nil || denom == nil || *denom == 0 {
		return nil
	}

	m := *ev / *denom
	return &m
}

// Mean returns the arithmetic mean of the values, skipping NaNs. Nil
// when nothing usable remains.
func Mean(values []float64) *float64 {
	sum := 0.0
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}

	if n == 0 {
		return nil
	}

	mean := sum / float64(n)
	return &mean
}

// Median returns the median of the values, skipping NaNs. Nil when
// nothing usable remains.
func Median(values []float64) *float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}

	if len(clean) == 0 {
		return nil
	}

	sort.Float64s(clean)
	n := len(clean)

	var median float64
	if n%2 == 1 {
		median = clean[n/2]
	} else {
		median = (clean[n/2-1] + clean[n/2]) / 2
	}

	return &median
}

// MultipleSet holds the per-fiscal-year trading multiples for one
// peer. A nil entry means the multiple could not be computed.
type MultipleSet struct {
	EVSales  map[int]*float64
	EVEBITDA map[int]*float64
	EVEBIT   map[int]*float64
}

// Compute derives EV/Sales, EV/EBITDA and EV/EBIT per fiscal year.
// EV follows the configured mode (provider EV vs market cap + net
// debt).
func Compute(snapshot *data.Snapshot, years []int, useProviderEV bool) MultipleSet {
	ev := snapshot.EnterpriseValueInput(useProviderEV)

	set := MultipleSet{
		EVSales:  make(map[int]*float64, len(years)),
		EVEBITDA: make(map[int]*float64, len(years)),
		EVEBIT:   make(map[int]*float64, len(years)),
	}

	for _, year := range years {
		set.EVSales[year] = Multiple(ev, yearValue(snapshot.Revenue, year))
		set.EVEBITDA[year] = Multiple(ev, yearValue(snapshot.EBITDA, year))
		set.EVEBIT[year] = Multiple(ev, yearValue(snapshot.EBIT, year))
	}

	return set
}

func yearValue(grid map[int]float64, year int) *float64 {
	if v, ok := grid[year]; ok {
		return &v
	}
	return nil
}

// SummaryRow is one line of the cross-peer summary statistics block:
// a metric-year label with core-set and extended-set aggregates over
// selected peers. The subject company never contributes.
type SummaryRow struct {
	Metric     string
	CoreMedian *float64
	CoreMean   *float64
	ExtMedian  *float64
	ExtMean    *float64
}

// Summarize computes mean/median per metric-year across the selected
// peers, split into the core set and the full (extended) selected
// set.
func Summarize(peers []*data.Peer, snapshots map[string]*data.Snapshot, years []int, useProviderEV bool) []SummaryRow {
	metrics := metricLabels(years)
	buckets := make(map[string]*bucket, len(metrics))
	for _, m := range metrics {
		buckets[m] = &bucket{}
	}

	for _, peer := range peers {
		if !peer.IsSelected() || peer.IsSubject() {
			continue
		}

		snapshot, ok := snapshots[peer.Ticker]
		if !ok {
			continue
		}

		set := Compute(snapshot, years, useProviderEV)
		for _, year := range years {
			collect(buckets, fmt.Sprintf("EV/Sales %d", year), set.EVSales[year], peer.IsCore())
			collect(buckets, fmt.Sprintf("EV/EBITDA %d", year), set.EVEBITDA[year], peer.IsCore())
			collect(buckets, fmt.Sprintf("EV/EBIT %d", year), set.EVEBIT[year], peer.IsCore())
		}
	}

	rows := make([]SummaryRow, 0, len(metrics))
	for _, m := range metrics {
		b := buckets[m]
		rows = append(rows, SummaryRow{
			Metric:     m,
			CoreMedian: Median(b.core),
			CoreMean:   Mean(b.core),
			ExtMedian:  Median(b.ext),
			ExtMean:    Mean(b.ext),
		})
	}

	return rows
}

type bucket struct {
	core []float64
	ext  []float64
}

func collect(buckets map[string]*bucket, metric string, v *float64, core bool) {
	if v == nil {
		return
	}

	b := buckets[metric]
	b.ext = append(b.ext, *v)
	if core {
		b.core = append(b.core, *v)
	}
}

func metricLabels(years []int) []string {
	labels := make([]string, 0, 3*len(years))
	for _, group := range []string{"EV/Sales", "EV/EBITDA", "EV/EBIT"} {
		for _, year := range years {
			labels = append(labels, fmt.Sprintf("%s %d", group, year))
		}
	}
	return labels
}
