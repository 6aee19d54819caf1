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

// Package archive persists fetch runs and the snapshots they produced
// to PostgreSQL so workbook figures can be traced back to the data
// they were built from.
package archive

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvcomps/data"
)

type Archive struct {
	DBUrl string

	Pool *pgxpool.Pool
}

// Open connects to the archive database
func Open(ctx context.Context, dbURL string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	return &Archive{
		DBUrl: dbURL,
		Pool:  pool,
	}, nil
}

// Close the database pool
func (myArchive *Archive) Close() {
	myArchive.Pool.Close()
}

// SaveRun upserts the run record
func (myArchive *Archive) SaveRun(ctx context.Context, run *data.RunSummary) error {
	conn, err := myArchive.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO runs ("id", "as_of", "provider", "wrds_status",
"start_time", "end_time", "num_peers", "num_fetched", "num_missing")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  end_time = EXCLUDED.end_time,
  num_fetched = EXCLUDED.num_fetched,
  num_missing = EXCLUDED.num_missing`,
		run.ID, run.AsOf, run.Provider, run.WRDSStatus,
		run.StartTime, run.EndTime, run.NumPeers, run.NumFetched, run.NumMissing)
	return err
}

// SaveSnapshots stores every fetched snapshot as a JSONB document
// keyed by run and ticker
func (myArchive *Archive) SaveSnapshots(ctx context.Context, run *data.RunSummary, snapshots map[string]*data.Snapshot) error {
	conn, err := myArchive.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for ticker, snapshot := range snapshots {
		doc, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}

		if _, err := conn.Exec(ctx, `INSERT INTO snapshots ("run_id", "ticker", "snapshot")
VALUES ($1, $2, $3)
ON CONFLICT (run_id, ticker) DO UPDATE SET snapshot = EXCLUDED.snapshot`,
			run.ID, ticker, doc); err != nil {
			return err
		}
	}

	return nil
}

// ListRuns returns run records most recent first
func (myArchive *Archive) ListRuns(ctx context.Context, limit int) ([]*data.RunSummary, error) {
	var runs []*data.RunSummary
	err := pgxscan.Select(ctx, myArchive.Pool, &runs,
		`SELECT id, as_of, provider, wrds_status, start_time,
coalesce(end_time, '0001-01-01'::timestamp) as end_time,
num_peers, num_fetched, num_missing
FROM runs ORDER BY start_time DESC LIMIT $1`, limit)
	return runs, err
}

// RunSnapshots loads the snapshots stored for a run
func (myArchive *Archive) RunSnapshots(ctx context.Context, runID string) (map[string]*data.Snapshot, error) {
	conn, err := myArchive.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT ticker, snapshot FROM snapshots WHERE run_id::text LIKE $1 || '%'`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make(map[string]*data.Snapshot)
	for rows.Next() {
		var ticker string
		var doc []byte
		if err := rows.Scan(&ticker, &doc); err != nil {
			return nil, err
		}

		snapshot := &data.Snapshot{}
		if err := json.Unmarshal(doc, snapshot); err != nil {
			return nil, err
		}
		snapshots[ticker] = snapshot
	}

	return snapshots, rows.Err()
}
