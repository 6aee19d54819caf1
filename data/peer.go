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

import "strings"

// Peer is a single row of the hand-maintained peer universe. The
// roster is curated by an analyst; everything else in the pipeline is
// derived from it.
type Peer struct {
	Company    string `csv:"company"`
	Ticker     string `csv:"ticker"`
	Selected   int    `csv:"selected"`
	CoreSet    int    `csv:"core_set"`
	SegmentFit string `csv:"segment_fit"`
	PeerStatus string `csv:"peer_status"`
	Rationale  string `csv:"selection_rationale"`
}

// IsSelected reports whether the peer is part of the comparable set
// used for summary statistics and WACC.
func (peer *Peer) IsSelected() bool {
	return peer.Selected == 1
}

// IsCore reports whether the peer belongs to the tighter core set.
func (peer *Peer) IsCore() bool {
	return peer.CoreSet == 1
}

// IsSubject reports whether the row represents the subject company
// rather than a trading peer. Subject rows are carried through the
// workbook but excluded from peer statistics.
func (peer *Peer) IsSubject() bool {
	return strings.Contains(strings.ToLower(peer.Company), "subject") ||
		strings.EqualFold(peer.PeerStatus, "subject")
}
