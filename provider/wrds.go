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
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvcomps/data"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// WRDS enriches snapshots from a Compustat-style fundamentals table
// reachable over PostgreSQL. It never overwrites a value another
// source already set; the status string it produces is written to the
// Sources sheet so the provenance of every run is visible.
type WRDS struct {
	pool   *pgxpool.Pool
	status string
	once   sync.Once
}

func (wrds *WRDS) Name() string {
	return "WRDS"
}

func (wrds *WRDS) ConfigDescription() map[string]string {
	return map[string]string{
		"wrds.dsn":         "What is the PostgreSQL DSN for the WRDS mirror? (blank to disable)",
		"wrds.funda_table": "Which fundamentals table should enrichment query?",
	}
}

func (wrds *WRDS) Description() string {
	return `WRDS (Wharton Research Data Services) hosts Compustat fundamentals. When a DSN is configured the workbook backfills statement figures the primary provider could not supply.`
}

// Status reports the outcome of the last connection attempt. Safe to
// call before Enrich; it triggers the connection probe.
func (wrds *WRDS) Status(ctx context.Context) string {
	wrds.connect(ctx)
	return wrds.status
}

func (wrds *WRDS) connect(ctx context.Context) {
	wrds.once.Do(func() {
		dsn := viper.GetString("wrds.dsn")
		if dsn == "" {
			wrds.status = "WRDS not configured (wrds.dsn missing); fallback provider used"
			return
		}

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			wrds.status = fmt.Sprintf("WRDS unavailable (%s); fallback provider used", err)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			wrds.status = fmt.Sprintf("WRDS unavailable (%s); fallback provider used", err)
			return
		}

		wrds.pool = pool

		if viper.GetString("wrds.funda_table") == "" {
			wrds.status = "WRDS connection successful; no mapped query configured, fallback provider retained"
			return
		}

		wrds.status = "WRDS connection successful; missing statement figures backfilled"
	})
}

func (wrds *WRDS) Close() {
	if wrds.pool != nil {
		wrds.pool.Close()
	}
}

type fundaRow struct {
	FiscalYear int      `db:"fiscal_year"`
	Revenue    *float64 `db:"revenue"`
	EBITDA     *float64 `db:"ebitda"`
	EBIT       *float64 `db:"ebit"`
}

// Enrich backfills per-year statement figures that are still missing
// after the primary fetch. Amounts in the mirror are already stated in
// millions of the trading currency.
func (wrds *WRDS) Enrich(ctx context.Context, snapshot *data.Snapshot, years []int) error {
	wrds.connect(ctx)
	if wrds.pool == nil {
		return nil
	}

	table := viper.GetString("wrds.funda_table")
	if table == "" {
		return nil
	}

	logger := zerolog.Ctx(ctx)

	rows := make([]*fundaRow, 0, len(years))
	sql := fmt.Sprintf(`SELECT fiscal_year, revenue, ebitda, ebit FROM %s WHERE ticker = $1 AND fiscal_year = ANY($2) ORDER BY fiscal_year`, table)
	if err := pgxscan.Select(ctx, wrds.pool, &rows, sql, snapshot.Ticker, years); err != nil {
		return fmt.Errorf("querying %s for %s: %w", table, snapshot.Ticker, err)
	}

	filled := 0
	for _, row := range rows {
		if _, ok := snapshot.Revenue[row.FiscalYear]; !ok && row.Revenue != nil {
			snapshot.Revenue[row.FiscalYear] = *row.Revenue
			filled++
		}
		if _, ok := snapshot.EBITDA[row.FiscalYear]; !ok && row.EBITDA != nil {
			snapshot.EBITDA[row.FiscalYear] = *row.EBITDA
			filled++
		}
		if _, ok := snapshot.EBIT[row.FiscalYear]; !ok && row.EBIT != nil {
			snapshot.EBIT[row.FiscalYear] = *row.EBIT
			filled++
		}
	}

	if filled > 0 {
		snapshot.Sources.Financials = fmt.Sprintf("%s; WRDS backfill (%s)", snapshot.Sources.Financials, table)
		logger.Info().Str("Ticker", snapshot.Ticker).Int("NumFields", filled).Msg("backfilled statement figures from wrds")
	}

	return nil
}
