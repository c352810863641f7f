package store

// Market is a configured target market in the remote store
type Market struct {
	MarketName string `json:"market_name"`
}

// ChannelConfig is a channel baseline configuration record
type ChannelConfig struct {
	ChannelName               string  `json:"channel_name"`
	BaseUnitsPerMonth         int     `json:"base_units_per_month"`
	ChannelWeight             float64 `json:"channel_weight"`
	RetailAdoptionFraction    float64 `json:"retail_adoption_fraction"`
	MarketingBudgetMultiplier float64 `json:"marketing_budget_multiplier"`
}

// CTSCell is one cell of the cost-to-serve percentage matrix
type CTSCell struct {
	MarketName  string  `json:"market_name"`
	ChannelName string  `json:"channel_name"`
	TotalCtsPct float64 `json:"total_cts_pct"`
}

// Settings maps global weight/adjustment keys to numeric values
type Settings map[string]float64

// headersResponse is the header-extraction endpoint's payload
type headersResponse struct {
	Headers []string `json:"headers"`
}

// importResponse is the import endpoint's payload
type importResponse struct {
	Message string `json:"message"`
	Stats   struct {
		Skus int `json:"skus"`
	} `json:"stats"`
}
