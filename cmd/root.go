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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvcomps",
	Short: "pvcomps builds comparable-company valuation workbooks",
	Long: `pvcomps is a command line utility that turns a hand-maintained peer
universe into a submission-ready trading comparables workbook. For every
roster entry it fetches market data (share price, market cap, enterprise
value, debt, beta) and annual financial statements, normalizes vendor labels
into a canonical Revenue/EBITDA/EBIT grid, computes EV/Sales, EV/EBITDA, and
EV/EBIT multiples per fiscal year, unlevers peer betas and relevers them at a
target capital structure to derive a CAPM-based WACC, runs quality-control
checks on every figure, and writes the result to an xlsx workbook with full
source attribution.

Analyst judgment always wins: the roster controls which peers are in the core
and extended sets, and a data override file takes precedence over anything a
provider reports.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvcomps.toml)")

	rootCmd.PersistentFlags().String("roster", "", "peer universe csv file")
	if err := viper.BindPFlag("roster_file", rootCmd.PersistentFlags().Lookup("roster")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for roster failed")
	}

	rootCmd.PersistentFlags().String("overrides", "", "data override csv file")
	if err := viper.BindPFlag("overrides_file", rootCmd.PersistentFlags().Lookup("overrides")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for overrides failed")
	}

	viper.SetDefault("roster_file", "inputs/peer_universe.csv")
	viper.SetDefault("overrides_file", "inputs/data_overrides.csv")
	viper.SetDefault("output_file", "outputs/TKH_Peer_Analysis_submission_ready.xlsx")
	viper.SetDefault("fiscal_years", []int{2023, 2024})
	viper.SetDefault("use_provider_ev", true)
	viper.SetDefault("include_minority_interest", false)
	viper.SetDefault("include_leases", false)
	viper.SetDefault("yahoo.rate_limit", 60)

	viper.SetDefault("wacc.risk_free_rate", 0.030)
	viper.SetDefault("wacc.equity_risk_premium", 0.050)
	viper.SetDefault("wacc.small_firm_premium", 0.0125)
	viper.SetDefault("wacc.marginal_tax_rate", 0.25)
	viper.SetDefault("wacc.cost_of_debt_pre_tax", 0.055)
	viper.SetDefault("wacc.target_d_over_e", 0.25)
	viper.SetDefault("wacc.preferred_equity_weight", 0.0)
	viper.SetDefault("wacc.beta_horizon", "5Y")
	viper.SetDefault("wacc.beta_frequency", "Monthly")
	viper.SetDefault("wacc.beta_index", "MSCI World")
	viper.SetDefault("wacc.cost_of_debt_method",
		"Assumption (Rf + spread proxy); replace with issuer-implied yield when available")
	viper.SetDefault("wacc.erp_source_note", "KPMG cost of capital study (manual input required)")
	viper.SetDefault("wacc.sfp_source_note", "KPMG size premium table (manual input required)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvcomps" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvcomps")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
