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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvcomps/comps"
	"github.com/penny-vault/pvcomps/data"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const (
	yahooQuoteSummaryURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/%s"
	yahooChartURL        = "https://query2.finance.yahoo.com/v8/finance/chart/%s"
	yahooTimeseriesURL   = "https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries/%s"

	yahooUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// quoteSummary modules queried per ticker
const yahooModules = "price,summaryDetail,defaultKeyStatistics,financialData"

// timeseries rows requested; the vendor key order mirrors the
// canonical label priority in the comps package
var yahooTimeseriesTypes = map[string]string{
	"annualTotalRevenue":                "TotalRevenue",
	"annualEBITDA":                      "EBITDA",
	"annualEBIT":                        "EBIT",
	"annualOperatingIncome":             "OperatingIncome",
	"annualDepreciationAndAmortization": "DepreciationAndAmortization",
}

// tickerRemap fixes roster symbols that differ from Yahoo's. Extend
// via the yahoo.remap table in the config file.
var tickerRemap = map[string]string{
	"COGX": "CGNX",
}

type Yahoo struct {
	client  *resty.Client
	limiter *rate.Limiter
	once    sync.Once
}

func (yahoo *Yahoo) Name() string {
	return "Yahoo Finance"
}

func (yahoo *Yahoo) ConfigDescription() map[string]string {
	return map[string]string{
		"yahoo.rate_limit": "What is the maximum number of requests per minute?",
		"yahoo.remap":      "Table of roster ticker to Yahoo symbol overrides",
	}
}

func (yahoo *Yahoo) Description() string {
	return `Yahoo Finance provides free quote, key statistics, and annual financial statement data for global equities. It is the primary (consumer-grade) source for the peer workbook.`
}

func (yahoo *Yahoo) setup() {
	yahoo.once.Do(func() {
		rateLimit := viper.GetInt("yahoo.rate_limit")
		if rateLimit <= 0 {
			rateLimit = 60
		}

		yahoo.client = resty.New().
			SetHeader("User-Agent", yahooUserAgent).
			SetTimeout(30 * time.Second)
		yahoo.limiter = rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), 1)
	})
}

// RemapTicker translates a roster ticker to the vendor symbol,
// consulting the config remap table first and the built-in fixes
// second.
func RemapTicker(ticker string) string {
	if remapped, ok := viper.GetStringMapString("yahoo.remap")[strings.ToLower(ticker)]; ok && remapped != "" {
		return remapped
	}

	if remapped, ok := tickerRemap[ticker]; ok {
		return remapped
	}

	return ticker
}

// FetchPeer retrieves quote fields, annual statement rows, and the FX
// rate for one roster entry. Individual vendor failures are logged
// and leave the affected fields missing.
func (yahoo *Yahoo) FetchPeer(ctx context.Context, peer *data.Peer, years []int) (*data.Snapshot, error) {
	yahoo.setup()
	logger := zerolog.Ctx(ctx)

	snapshot := data.NewSnapshot(peer)
	snapshot.VendorTicker = RemapTicker(peer.Ticker)
	snapshot.FetchedAt = time.Now()

	if err := yahoo.fetchQuote(ctx, snapshot); err != nil {
		logger.Warn().Err(err).Str("Ticker", snapshot.VendorTicker).Msg("quote fetch failed")
	}

	if snapshot.SharePrice == nil {
		if close, currency := yahoo.lastClose(ctx, snapshot.VendorTicker); close != nil {
			snapshot.SharePrice = close
			if snapshot.Currency == "" {
				snapshot.Currency = currency
			}
		}
	}

	lines, err := yahoo.fetchStatements(ctx, snapshot.VendorTicker, years)
	if err != nil {
		logger.Warn().Err(err).Str("Ticker", snapshot.VendorTicker).Msg("statement fetch failed")
	} else {
		comps.Normalize(snapshot, lines, years)
	}

	snapshot.FXToEUR = yahoo.FXToEUR(ctx, snapshot.Currency)

	yahoo.attribute(snapshot)

	return snapshot, nil
}

// attribute stamps per-field sources for everything this provider
// managed to populate.
func (yahoo *Yahoo) attribute(snapshot *data.Snapshot) {
	source := fmt.Sprintf("Yahoo Finance (%s)", snapshot.VendorTicker)

	if snapshot.MarketCap != nil {
		snapshot.Sources.MarketCap = source
	}
	if snapshot.EnterpriseValue != nil {
		snapshot.Sources.EnterpriseValue = source
	}
	if snapshot.NetDebt != nil {
		snapshot.Sources.NetDebt = source
	}
	if snapshot.Beta != nil {
		snapshot.Sources.Beta = source
	}
	if snapshot.HasFinancials() {
		snapshot.Sources.Financials = source
	}
}

func (yahoo *Yahoo) fetchQuote(ctx context.Context, snapshot *data.Snapshot) error {
	if err := yahoo.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParam("modules", yahooModules).
		Get(fmt.Sprintf(yahooQuoteSummaryURL, snapshot.VendorTicker))
	if err != nil {
		return err
	}

	if resp.StatusCode() >= 300 {
		return fmt.Errorf("quoteSummary returned status %d", resp.StatusCode())
	}

	return applyQuoteSummary(snapshot, resp.Body())
}

// applyQuoteSummary decodes the quoteSummary payload and fills quote
// fields. Per-field priority is first match wins across modules;
// currency amounts are scaled to millions.
func applyQuoteSummary(snapshot *data.Snapshot, body []byte) error {
	var envelope yahooQuoteSummaryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decoding quoteSummary: %w", err)
	}

	if envelope.QuoteSummary.Error != nil {
		return fmt.Errorf("quoteSummary error: %s", envelope.QuoteSummary.Error.Description)
	}

	if len(envelope.QuoteSummary.Result) == 0 {
		return fmt.Errorf("quoteSummary returned no results")
	}

	result := envelope.QuoteSummary.Result[0]

	if price := result.Price; price != nil {
		snapshot.Currency = price.Currency
		snapshot.SharePrice = price.RegularMarketPrice.Raw
		snapshot.MarketCap = toMillions(price.MarketCap.Raw)
	}

	if stats := result.DefaultKeyStatistics; stats != nil {
		snapshot.EnterpriseValue = toMillions(stats.EnterpriseValue.Raw)
		snapshot.Beta = stats.Beta.Raw
	}

	if detail := result.SummaryDetail; detail != nil {
		if snapshot.Beta == nil {
			snapshot.Beta = detail.Beta.Raw
		}
		if snapshot.MarketCap == nil {
			snapshot.MarketCap = toMillions(detail.MarketCap.Raw)
		}
	}

	if financial := result.FinancialData; financial != nil {
		snapshot.GrossDebt = toMillions(financial.TotalDebt.Raw)
		snapshot.Cash = toMillions(financial.TotalCash.Raw)
		snapshot.NetDebt = toMillions(financial.NetDebt.Raw)
	}

	// gross debt minus cash only when the vendor has no netDebt figure
	if snapshot.NetDebt == nil && snapshot.GrossDebt != nil && snapshot.Cash != nil {
		netDebt := *snapshot.GrossDebt - *snapshot.Cash
		snapshot.NetDebt = &netDebt
	}

	return nil
}

func (yahoo *Yahoo) fetchStatements(ctx context.Context, ticker string, years []int) ([]comps.StatementLine, error) {
	if err := yahoo.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	minYear := years[0]
	for _, year := range years {
		if year < minYear {
			minYear = year
		}
	}

	types := make([]string, 0, len(yahooTimeseriesTypes))
	for vendorType := range yahooTimeseriesTypes {
		types = append(types, vendorType)
	}

	period1 := time.Date(minYear, 1, 1, 0, 0, 0, 0, time.UTC)

	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":    strings.Join(types, ","),
			"period1": strconv.FormatInt(period1.Unix(), 10),
			"period2": strconv.FormatInt(time.Now().Unix(), 10),
		}).
		Get(fmt.Sprintf(yahooTimeseriesURL, ticker))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("timeseries returned status %d", resp.StatusCode())
	}

	return parseTimeseries(resp.Body())
}

// parseTimeseries converts the fundamentals-timeseries payload into
// statement lines. Each result block carries its row type in meta and
// the observations under a key of the same name.
func parseTimeseries(body []byte) ([]comps.StatementLine, error) {
	var envelope yahooTimeseriesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding timeseries: %w", err)
	}

	if envelope.Timeseries.Error != nil {
		return nil, fmt.Errorf("timeseries error: %s", envelope.Timeseries.Error.Description)
	}

	lines := make([]comps.StatementLine, 0, len(envelope.Timeseries.Result))

	for _, raw := range envelope.Timeseries.Result {
		var block map[string]json.RawMessage
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}

		var meta yahooTimeseriesMeta
		if err := json.Unmarshal(block["meta"], &meta); err != nil || len(meta.Type) == 0 {
			continue
		}

		vendorType := meta.Type[0]
		label, ok := yahooTimeseriesTypes[vendorType]
		if !ok {
			continue
		}

		observations, ok := block[vendorType]
		if !ok {
			continue
		}

		var points []*yahooTimeseriesPoint
		if err := json.Unmarshal(observations, &points); err != nil {
			continue
		}

		values := make(map[int]float64, len(points))
		for _, point := range points {
			if point == nil || point.ReportedValue.Raw == nil || len(point.AsOfDate) < 4 {
				continue
			}
			year, err := strconv.Atoi(point.AsOfDate[:4])
			if err != nil {
				continue
			}
			values[year] = *point.ReportedValue.Raw
		}

		if len(values) > 0 {
			lines = append(lines, comps.StatementLine{Label: label, Values: values})
		}
	}

	return lines, nil
}

// lastClose returns the most recent daily close and the quote
// currency, nil when the chart is empty or the request fails.
func (yahoo *Yahoo) lastClose(ctx context.Context, symbol string) (*float64, string) {
	if err := yahoo.limiter.Wait(ctx); err != nil {
		return nil, ""
	}

	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"range": "5d", "interval": "1d"}).
		Get(fmt.Sprintf(yahooChartURL, symbol))
	if err != nil || resp.StatusCode() >= 300 {
		return nil, ""
	}

	return parseChartClose(resp.Body())
}

func parseChartClose(body []byte) (*float64, string) {
	var envelope yahooChartEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ""
	}

	if len(envelope.Chart.Result) == 0 {
		return nil, ""
	}

	result := envelope.Chart.Result[0]
	currency := result.Meta.Currency

	if len(result.Indicators.Quote) == 0 {
		return nil, currency
	}

	closes := result.Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return closes[i], currency
		}
	}

	return nil, currency
}

func toMillions(v *float64) *float64 {
	if v == nil {
		return nil
	}

	m := *v / 1_000_000
	return &m
}

// Yahoo JSON shapes. Numeric fields arrive as {raw, fmt} objects; raw
// is a pointer so absent values survive decoding.

type yahooNumber struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooQuoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []yahooQuoteSummaryResult `json:"result"`
		Error  *yahooError               `json:"error"`
	} `json:"quoteSummary"`
}

type yahooQuoteSummaryResult struct {
	Price *struct {
		Currency           string      `json:"currency"`
		RegularMarketPrice yahooNumber `json:"regularMarketPrice"`
		MarketCap          yahooNumber `json:"marketCap"`
	} `json:"price"`
	SummaryDetail *struct {
		Beta      yahooNumber `json:"beta"`
		MarketCap yahooNumber `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		EnterpriseValue yahooNumber `json:"enterpriseValue"`
		Beta            yahooNumber `json:"beta"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		TotalDebt yahooNumber `json:"totalDebt"`
		TotalCash yahooNumber `json:"totalCash"`
		NetDebt   yahooNumber `json:"netDebt"`
	} `json:"financialData"`
}

type yahooTimeseriesEnvelope struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
		Error  *yahooError       `json:"error"`
	} `json:"timeseries"`
}

type yahooTimeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type yahooTimeseriesPoint struct {
	AsOfDate      string      `json:"asOfDate"`
	PeriodType    string      `json:"periodType"`
	ReportedValue yahooNumber `json:"reportedValue"`
}

type yahooChartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}
