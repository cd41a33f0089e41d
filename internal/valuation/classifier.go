package valuation

import "github.com/valuehunter/hunter/internal/contracts"

// triState normalizes a boolean screen into pass/fail/unknown. A check
// whose inputs were missing is unknown; it is never allowed to fail.
func triState(valid, condition bool) contracts.Check {
	if !valid {
		return contracts.CheckUnknown
	}
	if condition {
		return contracts.CheckPass
	}
	return contracts.CheckFail
}

// classify fills the verdict fields of a valued row from its derived
// metrics and the configured thresholds.
func classify(valued contracts.ValuedRow, th contracts.Thresholds) contracts.ValuedRow {
	valued.PEGPass = triState(
		valued.PEGRatio.Positive(),
		valued.PEGRatio.Float64 < th.PEGMax,
	)
	valued.PEVsSectorPass = triState(
		valued.TrailingPE.Valid && valued.PEMedianUsed.Valid,
		valued.TrailingPE.Float64 <= valued.PEMedianUsed.Float64*th.PESectorMaxMult,
	)
	valued.MarginOfSafetyPass = triState(
		valued.MarginOfSafety.Valid,
		valued.MarginOfSafety.Float64 >= th.MarginOfSafetyMin,
	)

	valued.ValuationHunter = hunterVerdict(valued.PEGPass, valued.PEVsSectorPass, valued.MarginOfSafetyPass)
	valued.Valuation = priceVerdict(valued.Price, valued.FairValue, th)
	valued.PctDiff = pctDiff(valued.Price, valued.FairValue)

	return valued
}

// hunterVerdict aggregates the three screens. Unknown dominates fail:
// a row is only declared fail when every check was evaluable.
func hunterVerdict(checks ...contracts.Check) contracts.Check {
	allPass := true
	for _, check := range checks {
		if check == contracts.CheckUnknown {
			return contracts.CheckUnknown
		}
		if check != contracts.CheckPass {
			allPass = false
		}
	}
	if allPass {
		return contracts.CheckPass
	}
	return contracts.CheckFail
}

// priceVerdict compares price against fair value scaled by the
// configured fractions (e.g. undervalued=0.90 means price at or below
// 90% of fair value).
func priceVerdict(price, fair contracts.Float, th contracts.Thresholds) contracts.Verdict {
	if !price.Valid || !fair.Valid || fair.Float64 <= 0 {
		return contracts.VerdictUnknown
	}
	if price.Float64 <= fair.Float64*th.Undervalued {
		return contracts.VerdictUndervalued
	}
	if price.Float64 >= fair.Float64*th.Overvalued {
		return contracts.VerdictOvervalued
	}
	return contracts.VerdictFair
}

// pctDiff is (price − fair) / fair, absent whenever fair value is.
func pctDiff(price, fair contracts.Float) contracts.Float {
	if !price.Valid || !fair.Valid || fair.Float64 == 0 {
		return contracts.AbsentFloat()
	}
	return contracts.NewFloat((price.Float64 - fair.Float64) / fair.Float64)
}
