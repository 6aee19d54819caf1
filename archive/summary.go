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
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a markdown description of recent runs
func (myArchive *Archive) Summary(ctx context.Context, limit int) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Run archive\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myArchive.DBUrl)); err != nil {
		return "", err
	}

	runs, err := myArchive.ListRuns(ctx, limit)
	if err != nil {
		return "", err
	}

	if len(runs) == 0 {
		if _, err := builder.WriteString("No runs recorded yet.\n"); err != nil {
			return "", err
		}
		return builder.String(), nil
	}

	if _, err := builder.WriteString("## Recent runs\n\n"); err != nil {
		return "", err
	}

	for _, run := range runs {
		age := timeago.English.Format(run.StartTime)

		if _, err := builder.WriteString(p.Sprintf("  * %s via %s, %d of %d peers fetched [%s]\n",
			age, run.Provider, run.NumFetched, run.NumPeers, run.ID.String()[:6])); err != nil {
			return "", err
		}

		if run.NumMissing > 0 {
			if _, err := builder.WriteString(p.Sprintf("    * %d peers missing data\n", run.NumMissing)); err != nil {
				return "", err
			}
		}

		if run.WRDSStatus != "" {
			if _, err := builder.WriteString(fmt.Sprintf("    * %s\n", run.WRDSStatus)); err != nil {
				return "", err
			}
		}

		if !run.EndTime.Equal(time.Time{}) && run.EndTime.After(run.StartTime) {
			if _, err := builder.WriteString(fmt.Sprintf("    * completed in %s\n",
				run.EndTime.Sub(run.StartTime).Round(time.Second))); err != nil {
				return "", err
			}
		}
	}

	return builder.String(), nil
}
