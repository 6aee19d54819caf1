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

// Package provider fetches market and fundamental data for roster
// entries from external vendors. Yahoo Finance is the primary source;
// a WRDS-style research database can enrich whatever Yahoo left
// empty. Fetching is best effort: a vendor failure degrades to
// missing fields rather than aborting the run.
package provider

import (
	"context"

	"github.com/penny-vault/pvcomps/data"
)

type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string
}

// Fetcher builds a full snapshot for one roster entry.
type Fetcher interface {
	Provider
	FetchPeer(ctx context.Context, peer *data.Peer, years []int) (*data.Snapshot, error)
}

// Enricher fills fields of an existing snapshot that earlier sources
// could not populate. Field priority is first-match-wins: an enricher
// never overwrites a value that is already set.
type Enricher interface {
	Provider
	Enrich(ctx context.Context, snapshot *data.Snapshot, years []int) error
}

// Map holds all known providers keyed by their config name.
var Map = map[string]Provider{
	"yahoo": &Yahoo{},
	"wrds":  &WRDS{},
}
