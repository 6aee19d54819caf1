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
	"strings"

	"github.com/alphadose/haxmap"
	"github.com/rs/zerolog"
)

// fxCache holds one spot rate per currency for the life of the run so
// each cross is fetched at most once.
var fxCache *haxmap.Map[string, float64]

func init() {
	fxCache = haxmap.New[string, float64]()
}

// FXToEUR returns the spot rate converting one unit of currency into
// EUR. Tries the direct cross first and the inverted pair second;
// returns nil when neither quote is available.
func (yahoo *Yahoo) FXToEUR(ctx context.Context, currency string) *float64 {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return nil
	}

	// GBp is pence; quote GBP and shift two decimal places
	scale := 1.0
	if currency == "GBp" {
		scale = 0.01
	}
	currency = strings.ToUpper(currency)

	if currency == "EUR" {
		one := 1.0
		return &one
	}

	if rate, ok := fxCache.Get(currency); ok {
		scaled := rate * scale
		return &scaled
	}

	yahoo.setup()

	if close, _ := yahoo.lastClose(ctx, fmt.Sprintf("%sEUR=X", currency)); close != nil {
		fxCache.Set(currency, *close)
		scaled := *close * scale
		return &scaled
	}

	if close, _ := yahoo.lastClose(ctx, fmt.Sprintf("EUR%s=X", currency)); close != nil && *close != 0 {
		inverted := 1.0 / *close
		fxCache.Set(currency, inverted)
		scaled := inverted * scale
		return &scaled
	}

	zerolog.Ctx(ctx).Warn().Str("Currency", currency).Msg("no FX quote available; EUR columns will be blank")
	return nil
}
