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
	"time"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvcomps/workbook"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch peer data and write the comparables workbook",
	Long: `The build sub-command runs the full pipeline: load the peer roster,
fetch market data and annual financials for every peer, apply analyst
overrides, and write the workbook with the peer table, WACC model, QC report,
source attribution, peer rationale, and clean overview sheets.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		startTime := time.Now()

		peers, snapshots, run, err := fetchSnapshots(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch peer data")
		}

		input := &workbook.Input{
			Peers:         peers,
			Snapshots:     snapshots,
			Years:         fiscalYears(),
			UseProviderEV: viper.GetBool("use_provider_ev"),

			IncludeMinorityInterest: viper.GetBool("include_minority_interest"),
			IncludeLeases:           viper.GetBool("include_leases"),

			Assumptions: assumptionsFromConfig(),
			AsOf:        run.AsOf,
			Provider:    run.Provider,
			WRDSStatus:  run.WRDSStatus,
		}

		outputFN := viper.GetString("output_file")
		if err := workbook.Build(input, outputFN); err != nil {
			log.Fatal().Err(err).Str("OutputFN", outputFN).Msg("could not write workbook")
		}

		runTime := time.Since(startTime)
		log.Info().Str("OutputFN", outputFN).Str("RunTime", durafmt.Parse(runTime).String()).
			Int("NumPeers", run.NumPeers).Int("NumFetched", run.NumFetched).Int("NumMissing", run.NumMissing).
			Msg("workbook saved")
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("output", "", "workbook output file")
	if err := viper.BindPFlag("output_file", buildCmd.Flags().Lookup("output")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for output failed")
	}

	buildCmd.Flags().Bool("computed-ev", false, "rebuild EV as market cap + net debt instead of trusting the provider figure")
	if err := viper.BindPFlag("computed_ev", buildCmd.Flags().Lookup("computed-ev")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for computed-ev failed")
	}

	buildCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if viper.GetBool("computed_ev") {
			viper.Set("use_provider_ev", false)
		}
	}
}
