package analytics

import (
	"errors"

	"github.com/wonny/skudeck/internal/catalog"
)

// ErrNoData distinguishes "nothing imported yet" from a collection whose
// aggregates are legitimately all zero. Callers must check with errors.Is.
var ErrNoData = errors.New("no sku data")

// MetricsBundle is the full set of executive dashboard aggregates, derived
// wholesale from one immutable snapshot of the SKU collection.
// ⭐ SSOT: 대시보드 지표 계산은 이 패키지에서만
type MetricsBundle struct {
	TotalSkus int `json:"total_skus"`

	// Recommendation tally; the four buckets always sum to TotalSkus
	LaunchNow   int `json:"launch_now"`
	PhaseLater  int `json:"phase_later"`
	DoNotLaunch int `json:"do_not_launch"`
	Unknown     int `json:"unknown"`

	// Financials over the active subset (Launch-Now or Wave-1-selected)
	TotalMonthlyRevenue float64 `json:"total_monthly_revenue"`
	TotalGmDollars      float64 `json:"total_gm_dollars"`
	AvgGmPct            float64 `json:"avg_gm_pct"`

	// Chart-ready pivots
	RecommendationSplit []NameValue `json:"recommendation_split"`
	MarketChannel       []MarketRow `json:"market_channel"`
	Channels            []string    `json:"channels"`
}

// NameValue is a single slice of the recommendation breakdown chart
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MarketRow is one pivot row: active-SKU counts per channel for one market.
// Channels a market never saw are absent from the map, not zero.
type MarketRow struct {
	Market   string         `json:"market"`
	Channels map[string]int `json:"channels"`
}

// Compute derives the metrics bundle from a record collection.
// Pure and deterministic: no hidden state, safe to re-invoke on every
// collection change. Empty input returns ErrNoData, never a zeroed bundle.
func Compute(skus []catalog.Sku) (*MetricsBundle, error) {
	if len(skus) == 0 {
		return nil, ErrNoData
	}

	normalized := catalog.NormalizeAll(skus)

	bundle := &MetricsBundle{
		TotalSkus: len(normalized),
	}

	// Single pass: recommendation tally + active subset
	active := make([]catalog.Normalized, 0, len(normalized))
	for _, n := range normalized {
		switch n.Recommendation {
		case catalog.RecommendationLaunchNow:
			bundle.LaunchNow++
		case catalog.RecommendationPhaseLater:
			bundle.PhaseLater++
		case catalog.RecommendationDoNotLaunch:
			bundle.DoNotLaunch++
		default:
			bundle.Unknown++
		}

		if n.Active() {
			active = append(active, n)
		}
	}

	// Financial sums over the active subset only. The mean gross margin
	// divides by the count of defined gm_pct values, not the subset size,
	// and normalizes to 0 when no value is defined.
	sumGmPct := 0.0
	definedGmCount := 0
	for _, n := range active {
		bundle.TotalMonthlyRevenue += n.MonthlyRevenue
		bundle.TotalGmDollars += n.MonthlyGmDollar
		if n.GmPctDefined {
			sumGmPct += n.GmPct
			definedGmCount++
		}
	}
	if definedGmCount > 0 {
		bundle.AvgGmPct = sumGmPct / float64(definedGmCount)
	}

	bundle.RecommendationSplit = recommendationSplit(bundle)
	bundle.MarketChannel, bundle.Channels = marketChannelPivot(active)

	return bundle, nil
}

// recommendationSplit builds the fixed-order breakdown, dropping zero slices
func recommendationSplit(b *MetricsBundle) []NameValue {
	entries := []NameValue{
		{Name: catalog.RecommendationLaunchNow.String(), Value: b.LaunchNow},
		{Name: catalog.RecommendationPhaseLater.String(), Value: b.PhaseLater},
		{Name: catalog.RecommendationDoNotLaunch.String(), Value: b.DoNotLaunch},
	}

	split := make([]NameValue, 0, len(entries))
	for _, e := range entries {
		if e.Value > 0 {
			split = append(split, e)
		}
	}
	return split
}

// marketChannelPivot groups the active subset by (market, channel), keeping
// first-encounter order for both axes. Channel order feeds the chart legend
// and stacking order downstream, so it must be stable across recomputes of
// the same snapshot.
func marketChannelPivot(active []catalog.Normalized) ([]MarketRow, []string) {
	rows := make([]MarketRow, 0)
	rowIndex := make(map[string]int)

	channels := make([]string, 0)
	seenChannel := make(map[string]bool)

	for _, n := range active {
		idx, ok := rowIndex[n.TargetMarket]
		if !ok {
			idx = len(rows)
			rowIndex[n.TargetMarket] = idx
			rows = append(rows, MarketRow{
				Market:   n.TargetMarket,
				Channels: make(map[string]int),
			})
		}
		rows[idx].Channels[n.PrimaryChannel]++

		if !seenChannel[n.PrimaryChannel] {
			seenChannel[n.PrimaryChannel] = true
			channels = append(channels, n.PrimaryChannel)
		}
	}

	return rows, channels
}
