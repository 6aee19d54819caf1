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
	"time"

	"github.com/penny-vault/pvcomps/archive"
	"github.com/penny-vault/pvcomps/data"
	"github.com/penny-vault/pvcomps/provider"
	"github.com/penny-vault/pvcomps/universe"
	"github.com/penny-vault/pvcomps/wacc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const primaryProvider = "Yahoo Finance (automated fallback)"

func fiscalYears() []int {
	return viper.GetIntSlice("fiscal_years")
}

func assumptionsFromConfig() wacc.Assumptions {
	return wacc.Assumptions{
		RiskFreeRate:          viper.GetFloat64("wacc.risk_free_rate"),
		EquityRiskPremium:     viper.GetFloat64("wacc.equity_risk_premium"),
		SmallFirmPremium:      viper.GetFloat64("wacc.small_firm_premium"),
		MarginalTaxRate:       viper.GetFloat64("wacc.marginal_tax_rate"),
		PreTaxCostOfDebt:      viper.GetFloat64("wacc.cost_of_debt_pre_tax"),
		TargetDebtOverEquity:  viper.GetFloat64("wacc.target_d_over_e"),
		PreferredEquityWeight: viper.GetFloat64("wacc.preferred_equity_weight"),

		BetaHorizon:      viper.GetString("wacc.beta_horizon"),
		BetaFrequency:    viper.GetString("wacc.beta_frequency"),
		BetaIndex:        viper.GetString("wacc.beta_index"),
		CostOfDebtMethod: viper.GetString("wacc.cost_of_debt_method"),
		ERPSourceNote:    viper.GetString("wacc.erp_source_note"),
		SFPSourceNote:    viper.GetString("wacc.sfp_source_note"),
	}
}

// asOfTime honors the asof_override config for reproducible builds.
func asOfTime() time.Time {
	if override := viper.GetString("asof_override"); override != "" {
		if t, err := time.Parse(time.RFC3339, override); err == nil {
			return t
		}
		log.Warn().Str("AsOfOverride", override).Msg("could not parse asof_override; using current time")
	}

	return time.Now().UTC()
}

// fetchSnapshots loads the roster, fetches every peer from the primary
// provider, backfills from WRDS when configured, and applies analyst
// overrides last so they always win.
func fetchSnapshots(ctx context.Context) ([]*data.Peer, map[string]*data.Snapshot, *data.RunSummary, error) {
	ctx = log.Logger.WithContext(ctx)

	years := fiscalYears()
	if len(years) == 0 {
		return nil, nil, nil, fmt.Errorf("fiscal_years must list at least one year; check your configuration")
	}

	peers, err := universe.Load(viper.GetString("roster_file"))
	if err != nil {
		return nil, nil, nil, err
	}

	run := data.NewRunSummary(primaryProvider)
	run.AsOf = asOfTime()
	run.NumPeers = len(peers)

	yahoo := provider.Map["yahoo"].(provider.Fetcher)
	wrds := provider.Map["wrds"].(*provider.WRDS)
	defer wrds.Close()

	run.WRDSStatus = wrds.Status(ctx)
	log.Info().Msg(run.WRDSStatus)

	snapshots := make(map[string]*data.Snapshot, len(peers))
	for _, peer := range peers {
		snapshot, err := yahoo.FetchPeer(ctx, peer, years)
		if err != nil {
			log.Warn().Err(err).Str("Ticker", peer.Ticker).Msg("fetch failed; peer row will be blank")
			run.NumMissing++
			snapshots[peer.Ticker] = data.NewSnapshot(peer)
			continue
		}

		if err := wrds.Enrich(ctx, snapshot, years); err != nil {
			log.Warn().Err(err).Str("Ticker", peer.Ticker).Msg("wrds enrichment failed")
		}

		snapshots[peer.Ticker] = snapshot
		if snapshot.MarketCap != nil || snapshot.HasFinancials() {
			run.NumFetched++
		} else {
			run.NumMissing++
		}
	}

	overrides, err := universe.LoadOverrides(viper.GetString("overrides_file"))
	if err != nil {
		return nil, nil, nil, err
	}
	universe.Apply(overrides, snapshots)

	run.EndTime = time.Now()

	saveRun(ctx, run, snapshots)

	return peers, snapshots, run, nil
}

// saveRun archives the run when a database is configured. Archiving is
// best effort; a workbook build never fails because the archive is
// down.
func saveRun(ctx context.Context, run *data.RunSummary, snapshots map[string]*data.Snapshot) {
	dsn := viper.GetString("archive.dsn")
	if dsn == "" {
		return
	}

	myArchive, err := archive.Open(ctx, dsn)
	if err != nil {
		log.Warn().Err(err).Msg("could not connect to run archive")
		return
	}
	defer myArchive.Close()

	if err := myArchive.SaveRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("could not save run record")
		return
	}

	if err := myArchive.SaveSnapshots(ctx, run, snapshots); err != nil {
		log.Warn().Err(err).Msg("could not save snapshots")
		return
	}

	log.Info().Str("RunID", run.ID.String()[:6]).Msg("run archived")
}

// archivedSnapshots replays the snapshots stored for an earlier run
// instead of fetching from providers. Run ids may be abbreviated the
// way `pvcomps runs` prints them.
func archivedSnapshots(ctx context.Context, runID string) ([]*data.Peer, map[string]*data.Snapshot, error) {
	dsn := viper.GetString("archive.dsn")
	if dsn == "" {
		return nil, nil, fmt.Errorf("no run archive configured; set archive.dsn or re-run `pvcomps init`")
	}

	myArchive, err := archive.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	defer myArchive.Close()

	snapshots, err := myArchive.RunSnapshots(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil, fmt.Errorf("no snapshots archived for run %s", runID)
	}

	peers, err := universe.Load(viper.GetString("roster_file"))
	if err != nil {
		return nil, nil, err
	}

	return peers, snapshots, nil
}
