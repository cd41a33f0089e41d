package valuation

import (
	"math"

	"github.com/valuehunter/hunter/internal/contracts"
)

// The PEG and fair-value fallbacks are ordered rule chains evaluated
// first-match-wins. Keeping them as explicit rule lists makes the
// priority order auditable and lets tests pin each rule in isolation.

type pegRule struct {
	source contracts.PEGSource
	apply  func(row contracts.NormalizedRow) (contracts.Float, bool)
}

var pegRules = []pegRule{
	{
		// Reported PEG wins when the source published a usable one.
		source: contracts.PEGReported,
		apply: func(row contracts.NormalizedRow) (contracts.Float, bool) {
			if row.PEGRatio.Positive() {
				return row.PEGRatio, true
			}
			return contracts.AbsentFloat(), false
		},
	},
	{
		// Derive PEG from trailing PE and earnings growth. Growth is a
		// percentage; values ≤ 1 are assumed to be fractions and scaled
		// by 100. A true sub-1% growth rate is indistinguishable from a
		// fraction under this rule; that ambiguity comes from the data
		// source and is kept as-is.
		source: contracts.PEGDerived,
		apply: func(row contracts.NormalizedRow) (contracts.Float, bool) {
			if !row.TrailingPE.Positive() || !row.EarningsGrowth.Positive() {
				return contracts.AbsentFloat(), false
			}
			growthPct := row.EarningsGrowth.Float64
			if growthPct <= 1 {
				growthPct *= 100
			}
			if growthPct <= 0 {
				return contracts.AbsentFloat(), false
			}
			return contracts.NewFloat(row.TrailingPE.Float64 / growthPct), true
		},
	},
}

// derivePEG resolves the best-available PEG ratio and its source.
func derivePEG(row contracts.NormalizedRow) (contracts.Float, contracts.PEGSource) {
	for _, rule := range pegRules {
		if value, ok := rule.apply(row); ok {
			return value, rule.source
		}
	}
	return contracts.AbsentFloat(), contracts.PEGMissing
}

type fairValueRule struct {
	source contracts.FairValueSource
	apply  func(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, bool)
}

var fairValueRules = []fairValueRule{
	{
		source: contracts.FairValueGraham,
		apply: func(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, bool) {
			if graham.Positive() {
				return graham, true
			}
			return contracts.AbsentFloat(), false
		},
	},
	{
		source: contracts.FairValueTargetMean,
		apply: func(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, bool) {
			if row.TargetMeanPrice.Positive() {
				return row.TargetMeanPrice, true
			}
			return contracts.AbsentFloat(), false
		},
	},
	{
		source: contracts.FairValueSectorTrailing,
		apply: func(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, bool) {
			if !row.TrailingEPS.Positive() {
				return contracts.AbsentFloat(), false
			}
			pe := stats.UsedTrailingPE(row.Sector)
			if !pe.Positive() {
				return contracts.AbsentFloat(), false
			}
			return contracts.NewFloat(row.TrailingEPS.Float64 * pe.Float64), true
		},
	},
	{
		source: contracts.FairValueSectorForward,
		apply: func(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, bool) {
			if !row.ForwardEPS.Positive() {
				return contracts.AbsentFloat(), false
			}
			pe := stats.UsedForwardPE(row.Sector)
			if !pe.Positive() {
				return contracts.AbsentFloat(), false
			}
			return contracts.NewFloat(row.ForwardEPS.Float64 * pe.Float64), true
		},
	},
}

// deriveFairValue resolves the best-available fair value estimate.
func deriveFairValue(row contracts.NormalizedRow, graham contracts.Float, stats contracts.CohortStats) (contracts.Float, contracts.FairValueSource) {
	for _, rule := range fairValueRules {
		if value, ok := rule.apply(row, graham, stats); ok {
			return value, rule.source
		}
	}
	return contracts.AbsentFloat(), contracts.FairValueMissing
}

// grahamValue computes sqrt(22.5 × EPS × book value), absent unless
// both inputs are present and positive.
func grahamValue(row contracts.NormalizedRow) contracts.Float {
	if !row.TrailingEPS.Positive() || !row.BookValuePerShare.Positive() {
		return contracts.AbsentFloat()
	}
	return contracts.NewFloat(math.Sqrt(22.5 * row.TrailingEPS.Float64 * row.BookValuePerShare.Float64))
}

// marginOfSafety is the fractional discount of price below graham
// value: (graham − price) / graham. Absent without a positive graham
// value or a present price.
func marginOfSafety(graham, price contracts.Float) contracts.Float {
	if !graham.Positive() || !price.Valid {
		return contracts.AbsentFloat()
	}
	return contracts.NewFloat((graham.Float64 - price.Float64) / graham.Float64)
}

// deriveMetrics fills the derived-metric fields of a ValuedRow from
// one normalized row plus the shared cohort stats. Pure and
// order-insensitive: no output depends on any other row's metrics.
func deriveMetrics(row contracts.NormalizedRow, stats contracts.CohortStats) contracts.ValuedRow {
	valued := contracts.ValuedRow{
		Ticker:            row.Ticker,
		Company:           row.Company,
		Sector:            row.Sector,
		Currency:          row.Currency,
		Price:             row.Price,
		MarketCap:         row.MarketCap,
		TrailingPE:        row.TrailingPE,
		ForwardPE:         row.ForwardPE,
		TrailingEPS:       row.TrailingEPS,
		ForwardEPS:        row.ForwardEPS,
		EarningsGrowth:    row.EarningsGrowth,
		BookValuePerShare: row.BookValuePerShare,
		TargetMeanPrice:   row.TargetMeanPrice,
	}

	valued.GrahamValue = grahamValue(row)
	valued.PEGRatio, valued.PEGRatioSource = derivePEG(row)
	valued.SectorMedianPE = stats.TrailingPEFor(row.Sector)
	valued.PEMedianUsed = stats.UsedTrailingPE(row.Sector)
	valued.FairValue, valued.FairValueSrc = deriveFairValue(row, valued.GrahamValue, stats)
	valued.MarginOfSafety = marginOfSafety(valued.GrahamValue, row.Price)

	return valued
}
