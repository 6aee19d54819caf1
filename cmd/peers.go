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
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvcomps/data"
	"github.com/penny-vault/pvcomps/universe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// peersCmd represents the peers command
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Show the peer universe grouped by role",
	Run: func(cmd *cobra.Command, args []string) {
		peers, err := universe.Load(viper.GetString("roster_file"))
		if err != nil {
			log.Fatal().Err(err).Str("RosterFN", viper.GetString("roster_file")).Msg("could not load peer universe")
		}

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}
		builder.WriteString("# Peer Universe\n")

		writeGroup := func(title string, match func(*data.Peer) bool) {
			builder.WriteString(fmt.Sprintf("\n## %s\n", title))
			for _, peer := range peers {
				if !match(peer) {
					continue
				}
				builder.WriteString(fmt.Sprintf("- **%s** (%s): %s — %s\n",
					peer.Company, peer.Ticker, peer.SegmentFit, peer.Rationale))
			}
		}

		writeGroup("Core set", func(p *data.Peer) bool { return p.IsCore() && !p.IsSubject() })
		writeGroup("Extended set", func(p *data.Peer) bool { return p.IsSelected() && !p.IsCore() && !p.IsSubject() })
		writeGroup("Excluded", func(p *data.Peer) bool { return !p.IsSelected() && !p.IsSubject() })
		writeGroup("Subject", func(p *data.Peer) bool { return p.IsSubject() })

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render peer document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
}
