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
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvcomps/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

var (
	fetchCSV     bool
	fetchParquet bool
	fetchFromRun string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch peer market data without building a workbook",
	Long: `The fetch sub-command runs the data pipeline only: load the roster,
fetch every peer, apply overrides, and archive the run when a database is
configured. Results can be exported to csv or parquet for inspection or reuse
in other tools. With --from-run the snapshots of an archived run are replayed
instead of fetching live data.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		startTime := time.Now()

		var (
			peers     []*data.Peer
			snapshots map[string]*data.Snapshot
			baseFN    string
		)

		if fetchFromRun != "" {
			var err error
			peers, snapshots, err = archivedSnapshots(ctx, fetchFromRun)
			if err != nil {
				log.Fatal().Err(err).Str("RunID", fetchFromRun).Msg("could not replay archived run")
			}
			baseFN = fmt.Sprintf("peer-snapshots-%s", slug.Make(fetchFromRun))
		} else {
			var run *data.RunSummary
			var err error
			peers, snapshots, run, err = fetchSnapshots(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not fetch peer data")
			}
			baseFN = fmt.Sprintf("peer-snapshots-%s-%s",
				run.AsOf.Format("20060102"), slug.Make(run.ID.String()[:6]))
		}

		ordered := make([]*data.Snapshot, 0, len(peers))
		for _, peer := range peers {
			if snapshot, ok := snapshots[peer.Ticker]; ok {
				ordered = append(ordered, snapshot)
			}
		}

		rows := data.Flatten(ordered, fiscalYears())

		if fetchCSV {
			fn := baseFN + ".csv"
			if err := saveCSV(rows, fn); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("csv export failed")
			}
			log.Info().Str("FileName", fn).Int("NumRows", len(rows)).Msg("csv export finished")
		}

		if fetchParquet {
			fn := baseFN + ".parquet"
			if err := saveParquet(rows, fn); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("parquet export failed")
			}
			log.Info().Str("FileName", fn).Int("NumRows", len(rows)).Msg("parquet export finished")
		}

		runTime := time.Since(startTime)
		log.Info().Str("RunTime", durafmt.Parse(runTime).String()).
			Int("NumPeers", len(peers)).Int("NumSnapshots", len(ordered)).
			Msg("fetch complete")
	},
}

func saveCSV(rows []*data.SnapshotRow, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	return gocsv.MarshalFile(&rows, fh)
}

func saveParquet(rows []*data.SnapshotRow, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.SnapshotRow), 4)
	if err != nil {
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			log.Error().Err(err).Str("Ticker", row.Ticker).Msg("parquet write failed for row")
		}
	}

	return pw.WriteStop()
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchCSV, "csv", false, "export flattened snapshots to csv")
	fetchCmd.Flags().BoolVar(&fetchParquet, "parquet", false, "export flattened snapshots to parquet")
	fetchCmd.Flags().StringVar(&fetchFromRun, "from-run", "", "replay snapshots from an archived run id instead of fetching")
}
