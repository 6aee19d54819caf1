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
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvcomps/archive"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runsLimit int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent fetch runs from the archive",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		dsn := viper.GetString("archive.dsn")
		if dsn == "" {
			log.Fatal().Msg("no run archive configured; set archive.dsn or re-run `pvcomps init`")
		}

		myArchive, err := archive.Open(ctx, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to run archive")
		}
		defer myArchive.Close()

		summary, err := myArchive.Summary(ctx, runsLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("could not summarize runs")
		}

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(summary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render run summary")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to show")
}
