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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a bad config edit must surface as an error before the pipeline
// starts fetching, not as an index panic deep in the year math
func TestFetchSnapshotsRejectsEmptyFiscalYears(t *testing.T) {
	viper.Set("fiscal_years", []int{})
	defer viper.Set("fiscal_years", []int{2023, 2024})

	_, _, _, err := fetchSnapshots(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fiscal_years")
}
