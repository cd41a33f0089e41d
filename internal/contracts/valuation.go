package contracts

// Check is the tri-state outcome of a single valuation screen.
// A check whose inputs are missing is unknown, never fail.
type Check string

const (
	CheckPass    Check = "pass"
	CheckFail    Check = "fail"
	CheckUnknown Check = "unknown"
)

// Verdict is the price-vs-fair-value classification.
type Verdict string

const (
	VerdictUndervalued Verdict = "undervalued"
	VerdictOvervalued  Verdict = "overvalued"
	VerdictFair        Verdict = "fair"
	VerdictUnknown     Verdict = "unknown"
)

// PEGSource records which rule produced the PEG ratio.
type PEGSource string

const (
	PEGReported PEGSource = "reported"
	PEGDerived  PEGSource = "derived"
	PEGMissing  PEGSource = "missing"
)

// FairValueSource records which rule produced the fair value estimate.
type FairValueSource string

const (
	FairValueGraham         FairValueSource = "graham_value"
	FairValueTargetMean     FairValueSource = "target_mean_price"
	FairValueSectorTrailing FairValueSource = "sector_median_trailing_pe"
	FairValueSectorForward  FairValueSource = "sector_median_forward_pe"
	FairValueMissing        FairValueSource = "missing"
)

// Thresholds are the configured cutoffs for the verdict classifier.
// Undervalued/Overvalued are fractions of fair value; PEGMax,
// PESectorMaxMult and MarginOfSafetyMin gate the hunter checks.
type Thresholds struct {
	Undervalued       float64 `json:"undervalued"`
	Overvalued        float64 `json:"overvalued"`
	PEGMax            float64 `json:"peg_max"`
	PESectorMaxMult   float64 `json:"pe_sector_max_mult"`
	MarginOfSafetyMin float64 `json:"margin_of_safety_min"`
}

// DefaultThresholds returns the standard screen configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Undervalued:       0.90,
		Overvalued:        1.10,
		PEGMax:            1.0,
		PESectorMaxMult:   1.0,
		MarginOfSafetyMin: 0.0,
	}
}

// CohortStats holds the cross-sectional PE medians computed once over
// the full normalized table and shared read-only by every row.
type CohortStats struct {
	SectorTrailingPE  map[string]Float
	SectorForwardPE   map[string]Float
	OverallTrailingPE Float
	OverallForwardPE  Float
}

// TrailingPEFor returns the sector's median trailing PE, absent when
// no row in the sector had a present value.
func (s CohortStats) TrailingPEFor(sector string) Float {
	return s.SectorTrailingPE[sector]
}

// UsedTrailingPE returns the trailing PE multiple for a sector: the
// sector median when present, otherwise the overall median.
func (s CohortStats) UsedTrailingPE(sector string) Float {
	return s.SectorTrailingPE[sector].Or(s.OverallTrailingPE)
}

// UsedForwardPE is UsedTrailingPE for the forward PE medians.
func (s CohortStats) UsedForwardPE(sector string) Float {
	return s.SectorForwardPE[sector].Or(s.OverallForwardPE)
}

// ValuedRow is the engine's output for one ticker: the normalized
// fundamentals plus derived metrics and classification labels.
// Rows are built once and never mutated.
type ValuedRow struct {
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
	BookValuePerShare Float  `json:"book_value_per_share"`
	TargetMeanPrice   Float  `json:"target_mean_price"`

	// Derived metrics
	GrahamValue    Float           `json:"graham_value"`
	PEGRatio       Float           `json:"peg_ratio"`
	PEGRatioSource PEGSource       `json:"peg_ratio_source"`
	SectorMedianPE Float           `json:"sector_median_pe"`
	PEMedianUsed   Float           `json:"pe_median_used"`
	FairValue      Float           `json:"fair_value"`
	FairValueSrc   FairValueSource `json:"fair_value_source"`
	MarginOfSafety Float           `json:"margin_of_safety"`

	// Classification
	PEGPass            Check   `json:"peg_pass"`
	PEVsSectorPass     Check   `json:"pe_vs_sector_pass"`
	MarginOfSafetyPass Check   `json:"margin_of_safety_pass"`
	ValuationHunter    Check   `json:"valuation_hunter"`
	Valuation          Verdict `json:"valuation"`
	PctDiff            Float   `json:"pct_diff"`
}
