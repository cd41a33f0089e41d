package contracts

// RawSnapshot is one ticker's fundamentals as fetched, before any
// cleansing. Every numeric field may be absent; the fetcher fills in
// whatever the source happened to return.
type RawSnapshot struct {
	Ticker            string `json:"ticker"`
	Company           string `json:"company"`
	Sector            string `json:"sector"`
	Currency          string `json:"currency"`
	Price             Float  `json:"price"`
	MarketCap         Float  `json:"market_cap"`
	TrailingPE        Float  `json:"trailing_pe"`
	ForwardPE         Float  `json:"forward_pe"`
	TrailingEPS       Float  `json:"trailing_eps"`
	ForwardEPS        Float  `json:"forward_eps"`
	EarningsGrowth    Float  `json:"earnings_growth"`
	PEGRatio          Float  `json:"peg_ratio"`
	BookValuePerShare Float  `json:"book_value_per_share"`
	TargetMeanPrice   Float  `json:"target_mean_price"`
}

// NormalizedRow is a RawSnapshot after cleansing: ticker trimmed,
// uppercased and '.'→'-', duplicates removed, non-positive price and
// market cap coerced to absent, empty sector replaced with "Unknown".
// The ticker is non-empty and unique within a normalized table.
type NormalizedRow RawSnapshot

// UnknownSector is the sector label assigned when the source reports
// none. It participates in cohort grouping like any other sector.
const UnknownSector = "Unknown"
