// Package portfolio narrows the SKU catalog to a working subset and
// tracks which rows the operator has picked for export or bulk edits.
package portfolio

import (
	"sort"

	"github.com/wonny/skudeck/internal/catalog"
)

// Options holds the active filter dimensions.
// An empty string on any dimension means "no constraint".
type Options struct {
	Brand   string `json:"brand"`
	Market  string `json:"market"`
	Channel string `json:"channel"`
}

// Filter returns the SKUs matching every set dimension, preserving
// input order. Matching is exact, not substring.
func Filter(skus []catalog.Sku, opts Options) []catalog.Sku {
	if opts.Brand == "" && opts.Market == "" && opts.Channel == "" {
		return skus
	}

	out := make([]catalog.Sku, 0, len(skus))
	for _, sku := range skus {
		if opts.Brand != "" && deref(sku.Brand) != opts.Brand {
			continue
		}
		if opts.Market != "" && deref(sku.TargetMarket) != opts.Market {
			continue
		}
		if opts.Channel != "" && deref(sku.PrimaryChannel) != opts.Channel {
			continue
		}
		out = append(out, sku)
	}
	return out
}

// FilterValues is the distinct option set offered for each dimension.
type FilterValues struct {
	Brands   []string `json:"brands"`
	Markets  []string `json:"markets"`
	Channels []string `json:"channels"`
}

// Values extracts the distinct non-empty values per dimension, sorted.
// ⭐ SSOT: 필터 옵션은 현재 카탈로그에서만 파생
func Values(skus []catalog.Sku) FilterValues {
	brands := map[string]struct{}{}
	markets := map[string]struct{}{}
	channels := map[string]struct{}{}

	for _, sku := range skus {
		if v := deref(sku.Brand); v != "" {
			brands[v] = struct{}{}
		}
		if v := deref(sku.TargetMarket); v != "" {
			markets[v] = struct{}{}
		}
		if v := deref(sku.PrimaryChannel); v != "" {
			channels[v] = struct{}{}
		}
	}

	return FilterValues{
		Brands:   sortedKeys(brands),
		Markets:  sortedKeys(markets),
		Channels: sortedKeys(channels),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
