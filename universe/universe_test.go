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
	"os"
	"path/filepath"
	"testing"

	"github.com/penny-vault/pvcomps/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterCSV = `company,ticker,selected,core_set,segment_fit,peer_status,selection_rationale
Basler,BSL.DE,1,1,Machine vision,Core,Direct machine vision hardware/software comparable
Cognex,COGX,1,1,Machine vision,Core,Global machine vision leader benchmark
Arcadis,ARCAD.AS,0,0,Services,Excluded,Services-heavy model
TKH Group (subject),TWEKA.AS,1,0,Subject,Subject,Subject company
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
	return fn
}

func TestLoad(t *testing.T) {
	peers, err := Load(writeTemp(t, "roster.csv", rosterCSV))
	require.NoError(t, err)
	require.Len(t, peers, 4)

	assert.Equal(t, "Basler", peers[0].Company)
	assert.True(t, peers[0].IsSelected())
	assert.True(t, peers[0].IsCore())
	assert.False(t, peers[0].IsSubject())

	assert.False(t, peers[2].IsSelected())
	assert.Equal(t, "Excluded", peers[2].PeerStatus)

	assert.True(t, peers[3].IsSubject())
}

func TestLoadRejectsDuplicateTickers(t *testing.T) {
	csv := `company,ticker,selected,core_set,segment_fit,peer_status,selection_rationale
Basler,BSL.DE,1,1,Machine vision,Core,a
Basler Again,bsl.de,1,1,Machine vision,Core,b
`
	_, err := Load(writeTemp(t, "dup.csv", csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ticker")
}

func TestLoadRejectsBlankFields(t *testing.T) {
	csv := `company,ticker,selected,core_set,segment_fit,peer_status,selection_rationale
,BSL.DE,1,1,Machine vision,Core,a
`
	_, err := Load(writeTemp(t, "blank.csv", csv))
	require.Error(t, err)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestApplyOverrides(t *testing.T) {
	csv := `ticker,field,year,value,source
BSL.DE,equity_beta,,1.35,KPMG beta study
BSL.DE,ebitda,2024,81.5,Annual report
BSL.DE,net_debt_ccy_m,,42.0,
ZZZ,market_cap_ccy_m,,1.0,
BSL.DE,bogus_field,,9.9,
`
	overrides, err := LoadOverrides(writeTemp(t, "overrides.csv", csv))
	require.NoError(t, err)
	require.Len(t, overrides, 5)

	snapshot := data.NewSnapshot(&data.Peer{Company: "Basler", Ticker: "BSL.DE"})
	beta := 1.12
	snapshot.Beta = &beta

	Apply(overrides, map[string]*data.Snapshot{"BSL.DE": snapshot})

	require.NotNil(t, snapshot.Beta)
	assert.InDelta(t, 1.35, *snapshot.Beta, 1e-9)
	assert.Equal(t, "KPMG beta study", snapshot.Sources.Beta)

	assert.InDelta(t, 81.5, snapshot.EBITDA[2024], 1e-9)
	assert.Equal(t, "Annual report", snapshot.Sources.Financials)

	require.NotNil(t, snapshot.NetDebt)
	assert.InDelta(t, 42.0, *snapshot.NetDebt, 1e-9)
	assert.Equal(t, "Analyst override", snapshot.Sources.NetDebt)
}
