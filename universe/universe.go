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

// Package universe loads the hand-maintained peer roster and the
// analyst data-override file that pins values over provider data.
package universe

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvcomps/data"
)

// Load reads the peer roster CSV. Columns follow the roster schema:
// company, ticker, selected, core_set, segment_fit, peer_status,
// selection_rationale.
func Load(fn string) ([]*data.Peer, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("opening peer roster: %w", err)
	}
	defer fh.Close()

	var peers []*data.Peer
	if err := gocsv.UnmarshalFile(fh, &peers); err != nil {
		return nil, fmt.Errorf("parsing peer roster %s: %w", fn, err)
	}

	if err := validate(peers); err != nil {
		return nil, err
	}

	return peers, nil
}

func validate(peers []*data.Peer) error {
	if len(peers) == 0 {
		return fmt.Errorf("peer roster is empty")
	}

	seen := make(map[string]string, len(peers))
	for _, peer := range peers {
		if strings.TrimSpace(peer.Company) == "" {
			return fmt.Errorf("peer roster row with ticker %q has no company name", peer.Ticker)
		}

		if strings.TrimSpace(peer.Ticker) == "" {
			return fmt.Errorf("peer roster row for %q has no ticker", peer.Company)
		}

		ticker := strings.ToUpper(peer.Ticker)
		if other, ok := seen[ticker]; ok {
			return fmt.Errorf("duplicate ticker %s in peer roster (%s and %s)", peer.Ticker, other, peer.Company)
		}
		seen[ticker] = peer.Company
	}

	return nil
}
