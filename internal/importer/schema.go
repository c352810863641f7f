package importer

// Column describes one canonical import field: the stable key the store's
// import service understands, a display label, and whether a mapping for it
// is mandatory before an import may be submitted.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Canonical keys referenced outside the schema table
const (
	ColSkuID        = "SKU ID"
	ColSkuName      = "SKU Name"
	ColCategory     = "Category"
	ColTargetMarket = "Target Market"
)

// CanonicalSchema is the fixed import schema, independent of any particular
// source spreadsheet. Order is significant: validation messages list violated
// columns in this order.
// ⭐ SSOT: 임포트 스키마 정의는 여기서만
var CanonicalSchema = []Column{
	{Key: ColSkuID, Label: "SKU ID", Required: true},
	{Key: ColSkuName, Label: "SKU Name", Required: true},
	{Key: ColCategory, Label: "Category", Required: true},
	{Key: "Brand", Label: "Brand"},
	{Key: ColTargetMarket, Label: "Target Market"},
	{Key: "Primary Channel", Label: "Primary Channel"},
	{Key: "Consumer Trend", Label: "Score: Consumer Trend"},
	{Key: "Point of Diff", Label: "Score: Point of Diff"},
	{Key: "Channel Suitability", Label: "Score: Channel Suitability"},
	{Key: "Strategic Role", Label: "Score: Strategic Role"},
	{Key: "Marketing Leverage", Label: "Score: Marketing Leverage"},
	{Key: "Price Ladder", Label: "Score: Price Ladder"},
	{Key: "Usage Occasion", Label: "Score: Usage Occasion"},
	{Key: "Channel Diff", Label: "Score: Channel Diff"},
	{Key: "Story Cohesion", Label: "Score: Story Cohesion"},
	{Key: "Operational Synergy", Label: "Score: Operational Synergy"},
	{Key: "Regulatory Delay", Label: "Score: Regulatory Delay"},
	{Key: "Retail Listing", Label: "Score: Retail Listing"},
	{Key: "Competitive", Label: "Score: Competitive"},
	{Key: "Supply Chain", Label: "Score: Supply Chain"},
	{Key: "Price War", Label: "Score: Price War"},
	{Key: "Regulatory Eligible", Label: "Regulatory Eligible (Yes/No)"},
	{Key: "Regulatory Prohibition", Label: "Regulatory Prohibition (Yes/No)"},
	{Key: "IP Risk High", Label: "IP Risk High (Yes/No)"},
	{Key: "Supply Ready", Label: "Supply Ready (Yes/No)"},
	{Key: "MOQ", Label: "MOQ"},
	{Key: "Lead Time (days)", Label: "Lead Time (days)"},
	{Key: "Shelf Life (months)", Label: "Shelf Life (months)"},
	{Key: "Local List Price (calc)", Label: "Local List Price"},
	{Key: "Landed Cost (calc)", Label: "Landed Cost"},
}
