package catalog

// UnassignedLabel is substituted for missing market/channel fields so that
// pivot grouping always has a bucket to land in.
const UnassignedLabel = "Unassigned"

// Normalized is a Sku with every optional field the aggregation path reads
// resolved to a concrete default, exactly once. GmPct keeps its defined-ness
// because the average gross margin is taken only over defined values.
type Normalized struct {
	SkuID          string
	Recommendation Recommendation
	Wave1          bool

	MonthlyRevenue  float64
	MonthlyGmDollar float64
	GmPct           float64
	GmPctDefined    bool

	TargetMarket   string
	PrimaryChannel string
}

// Normalize resolves all optional-field defaults for one record.
// Total function: any Sku, however sparse, yields a usable value.
func Normalize(s Sku) Normalized {
	n := Normalized{
		SkuID:          s.SkuID,
		Recommendation: RecommendationUnknown,
		TargetMarket:   UnassignedLabel,
		PrimaryChannel: UnassignedLabel,
	}

	if s.TargetMarket != nil && *s.TargetMarket != "" {
		n.TargetMarket = *s.TargetMarket
	}
	if s.PrimaryChannel != nil && *s.PrimaryChannel != "" {
		n.PrimaryChannel = *s.PrimaryChannel
	}

	c := s.Cache
	if c == nil {
		return n
	}

	n.Recommendation = ParseRecommendation(c.FinalRecommendation)
	if c.SelectForWave1 != nil {
		n.Wave1 = *c.SelectForWave1
	}
	if c.MonthlyRevenue != nil {
		n.MonthlyRevenue = *c.MonthlyRevenue
	}
	if c.MonthlyGmDollar != nil {
		n.MonthlyGmDollar = *c.MonthlyGmDollar
	}
	if c.GmPct != nil {
		n.GmPct = *c.GmPct
		n.GmPctDefined = true
	}

	return n
}

// Active reports whether the record belongs to the active subset:
// recommended for immediate launch, or hand-picked into wave 1.
// The two conditions may overlap; a record is active exactly once.
func (n Normalized) Active() bool {
	return n.Recommendation == RecommendationLaunchNow || n.Wave1
}

// NormalizeAll normalizes a whole collection in input order
func NormalizeAll(skus []Sku) []Normalized {
	out := make([]Normalized, len(skus))
	for i, s := range skus {
		out[i] = Normalize(s)
	}
	return out
}
