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
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvcomps/archive"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type initSettings struct {
	RosterFile    string `toml:"roster_file"`
	OverridesFile string `toml:"overrides_file"`
	OutputFile    string `toml:"output_file"`

	Archive struct {
		DSN string `toml:"dsn"`
	} `toml:"archive"`

	WRDS struct {
		DSN        string `toml:"dsn"`
		FundaTable string `toml:"funda_table"`
	} `toml:"wrds"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration and set up the run archive schema",
	Run: func(cmd *cobra.Command, args []string) {
		settings := &initSettings{
			RosterFile:    "inputs/peer_universe.csv",
			OverridesFile: "inputs/data_overrides.csv",
			OutputFile:    "outputs/TKH_Peer_Analysis_submission_ready.xlsx",
		}

		validateDSN := func(dsn string) error {
			if dsn == "" {
				return nil
			}
			_, err := pgx.ParseConfig(dsn)
			return err
		}

		form := huh.NewForm(
			// Gather the input and output file locations
			huh.NewGroup(
				huh.NewInput().
					Title("Where is the peer universe csv?").
					Value(&settings.RosterFile),

				huh.NewInput().
					Title("Where is the data override csv?").
					Value(&settings.OverridesFile),

				huh.NewInput().
					Title("Where should the workbook be written?").
					Value(&settings.OutputFile),
			),

			// Optional databases
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for the run archive database (leave blank to skip archiving)").
					Value(&settings.Archive.DSN).
					Validate(validateDSN),

				huh.NewInput().
					Title("Provide the DSN for a WRDS mirror (leave blank to skip enrichment)").
					Value(&settings.WRDS.DSN).
					Validate(validateDSN),

				huh.NewInput().
					Title("Which fundamentals table should WRDS enrichment query?").
					Value(&settings.WRDS.FundaTable),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		if settings.Archive.DSN != "" {
			log.Info().Msg("creating run archive tables")

			// run migration
			dbURL := strings.Replace(settings.Archive.DSN, "postgres://", "pgx5://", -1)
			if err := archive.Migrate(dbURL); err != nil {
				log.Fatal().Err(err).Msg("error running database migration")
			}

			log.Info().Msg("run archive tables created")
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvcomps.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(settings)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("pvcomps has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
