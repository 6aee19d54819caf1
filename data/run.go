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

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary describes one fetch run across the peer universe.
type RunSummary struct {
	ID         uuid.UUID `db:"id"`
	AsOf       time.Time `db:"as_of"`
	Provider   string    `db:"provider"`
	WRDSStatus string    `db:"wrds_status"`

	StartTime  time.Time `db:"start_time"`
	EndTime    time.Time `db:"end_time"`
	NumPeers   int       `db:"num_peers"`
	NumFetched int       `db:"num_fetched"`
	NumMissing int       `db:"num_missing"`
}

// NewRunSummary starts a run record with a fresh ID.
func NewRunSummary(provider string) *RunSummary {
	return &RunSummary{
		ID:        uuid.New(),
		Provider:  provider,
		StartTime: time.Now(),
	}
}
