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
package archive

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvcomps/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

// replayed runs must reproduce the snapshot exactly, so the stored
// document round trip cannot lose fields
func TestSnapshotDocumentRoundTrip(t *testing.T) {
	snapshot := data.NewSnapshot(&data.Peer{Company: "Mersen", Ticker: "MRN.PA"})
	snapshot.Currency = "EUR"
	snapshot.SharePrice = f64(29.85)
	snapshot.MarketCap = f64(730.0)
	snapshot.EnterpriseValue = f64(1100.0)
	snapshot.GrossDebt = f64(500.0)
	snapshot.Cash = f64(130.0)
	snapshot.NetDebt = f64(370.0)
	snapshot.Beta = f64(1.08)
	snapshot.FXToEUR = f64(1.0)
	snapshot.Revenue[2024] = 1200.0
	snapshot.EBITDA[2024] = 190.0
	snapshot.Sources.Financials = "Yahoo Finance (MRN.PA); WRDS backfill (comp.funda)"
	snapshot.FetchedAt = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	doc, err := json.Marshal(snapshot)
	require.NoError(t, err)

	replayed := &data.Snapshot{}
	require.NoError(t, json.Unmarshal(doc, replayed))

	assert.Equal(t, snapshot, replayed)
	require.NotNil(t, replayed.NetDebt)
	assert.InDelta(t, 370.0, *replayed.NetDebt, 1e-9)
	assert.Equal(t, 1200.0, replayed.Revenue[2024])
	assert.Equal(t, snapshot.Sources.Financials, replayed.Sources.Financials)
}
