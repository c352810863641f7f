package catalog

// Sku is a product-candidate record as served by the remote SKU store.
// ⭐ SSOT: SKU 와이어 포맷 정의는 이 파일에서만
// The store owns these records; this service never constructs them and only
// re-reads after an edit round-trips through the store.
type Sku struct {
	SkuID    string  `json:"sku_id"`
	SkuName  string  `json:"sku_name"`
	Brand    *string `json:"brand,omitempty"`
	Category string  `json:"category"`

	TargetMarket   *string `json:"target_market,omitempty"`
	PrimaryChannel *string `json:"primary_channel,omitempty"`

	RampMonth *int `json:"ramp_month,omitempty"`

	RegulatoryEligible    *bool `json:"regulatory_eligible,omitempty"`
	RegulatoryProhibition *bool `json:"regulatory_prohibition,omitempty"`
	IPRiskHigh            *bool `json:"ip_risk_high,omitempty"`
	SupplyReady           *bool `json:"supply_ready,omitempty"`

	MOQ             *int `json:"moq,omitempty"`
	LeadTimeDays    *int `json:"lead_time_days,omitempty"`
	ShelfLifeMonths *int `json:"shelf_life_months,omitempty"`

	LocalListPrice *float64 `json:"local_list_price,omitempty"`
	LandedCost     *float64 `json:"landed_cost,omitempty"`

	// Sub-scores, conventionally 0-10
	ScoreConsumerTrend      *int `json:"score_consumer_trend,omitempty"`
	ScorePointOfDiff        *int `json:"score_point_of_diff,omitempty"`
	ScoreChannelSuitability *int `json:"score_channel_suitability,omitempty"`
	ScoreStrategicRole      *int `json:"score_strategic_role,omitempty"`
	ScoreMarketingLeverage  *int `json:"score_marketing_leverage,omitempty"`
	ScorePriceLadder        *int `json:"score_price_ladder,omitempty"`
	ScoreUsageOccasion      *int `json:"score_usage_occasion,omitempty"`
	ScoreChannelDiff        *int `json:"score_channel_diff,omitempty"`
	ScoreStoryCohesion      *int `json:"score_story_cohesion,omitempty"`
	ScoreOperationalSynergy *int `json:"score_operational_synergy,omitempty"`
	ScoreRegulatoryDelay    *int `json:"score_regulatory_delay,omitempty"`
	ScoreRetailListing      *int `json:"score_retail_listing,omitempty"`
	ScoreCompetitive        *int `json:"score_competitive,omitempty"`
	ScoreSupplyChain        *int `json:"score_supply_chain,omitempty"`
	ScorePriceWar           *int `json:"score_price_war,omitempty"`

	PassPortfolioBalance *bool   `json:"pass_portfolio_balance,omitempty"`
	SuggestedLaunchWave  *string `json:"suggested_launch_wave,omitempty"`

	Cache *ScoreCache `json:"cache,omitempty"`
}

// ScoreCache is the externally computed scoring/recommendation sub-record.
// The scoring engine lives in the store; this service only reads its output.
type ScoreCache struct {
	GmDollarPerUnit *float64 `json:"gm_dollar_per_unit,omitempty"`
	GmPct           *float64 `json:"gm_pct,omitempty"`
	MonthlyRevenue  *float64 `json:"monthly_revenue,omitempty"`
	MonthlyGmDollar *float64 `json:"monthly_gm_dollar,omitempty"`

	WeightedScoreLayerB  *float64 `json:"weighted_score_layer_b,omitempty"`
	SynergyScoreLayerC   *float64 `json:"synergy_score_layer_c,omitempty"`
	RiskScoreLayerD      *float64 `json:"risk_score_layer_d,omitempty"`
	RiskFactor           *float64 `json:"risk_factor,omitempty"`
	ChannelWeightedScore *float64 `json:"channel_weighted_score,omitempty"`

	PassRegulatory  *bool `json:"pass_regulatory,omitempty"`
	PassSupplyReady *bool `json:"pass_supply_ready,omitempty"`
	PassGmFloor     *bool `json:"pass_gm_floor,omitempty"`

	FinalRecommendation *string `json:"final_recommendation,omitempty"`
	SelectForWave1      *bool   `json:"select_for_wave_1,omitempty"`

	AdjUnitsBase  *float64 `json:"adj_units_base,omitempty"`
	AdjUnitsBest  *float64 `json:"adj_units_best,omitempty"`
	AdjUnitsWorst *float64 `json:"adj_units_worst,omitempty"`

	MonthlyGmBase  *float64 `json:"monthly_gm_base,omitempty"`
	MonthlyGmBest  *float64 `json:"monthly_gm_best,omitempty"`
	MonthlyGmWorst *float64 `json:"monthly_gm_worst,omitempty"`

	RankBase  *int `json:"rank_base,omitempty"`
	RankBest  *int `json:"rank_best,omitempty"`
	RankWorst *int `json:"rank_worst,omitempty"`
}

// DisplayScore returns the headline score for a SKU: the channel-weighted
// score, falling back to the layer-B weighted score when the former is absent.
func (c *ScoreCache) DisplayScore() float64 {
	if c == nil {
		return 0
	}
	if c.ChannelWeightedScore != nil {
		return *c.ChannelWeightedScore
	}
	if c.WeightedScoreLayerB != nil {
		return *c.WeightedScoreLayerB
	}
	return 0
}

// Recommendation classifies a SKU's final recommendation label
type Recommendation int

const (
	RecommendationUnknown Recommendation = iota
	RecommendationLaunchNow
	RecommendationPhaseLater
	RecommendationDoNotLaunch
)

// Wire values used by the store's scoring engine
const (
	labelLaunchNow   = "Launch Now"
	labelPhaseLater  = "Phase Later"
	labelDoNotLaunch = "Do Not Launch"
)

// ParseRecommendation maps a wire label to a Recommendation.
// Missing or unrecognized labels classify as Unknown, never an error.
func ParseRecommendation(label *string) Recommendation {
	if label == nil {
		return RecommendationUnknown
	}
	switch *label {
	case labelLaunchNow:
		return RecommendationLaunchNow
	case labelPhaseLater:
		return RecommendationPhaseLater
	case labelDoNotLaunch:
		return RecommendationDoNotLaunch
	default:
		return RecommendationUnknown
	}
}

// String returns the display label for a recommendation
func (r Recommendation) String() string {
	switch r {
	case RecommendationLaunchNow:
		return labelLaunchNow
	case RecommendationPhaseLater:
		return labelPhaseLater
	case RecommendationDoNotLaunch:
		return labelDoNotLaunch
	default:
		return "Unknown"
	}
}
