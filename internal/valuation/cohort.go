package valuation

import (
	"sort"

	"github.com/valuehunter/hunter/internal/contracts"
)

// Aggregate computes the cross-sectional PE medians over a normalized
// table. Absent values are excluded from every median, not counted as
// zero; a sector with no present values gets an absent median and
// callers fall back to the overall median. Computed once per run and
// shared read-only by the per-row derivation.
func Aggregate(rows []contracts.NormalizedRow) contracts.CohortStats {
	sectorTrailing := make(map[string][]float64)
	sectorForward := make(map[string][]float64)
	var overallTrailing, overallForward []float64

	for _, row := range rows {
		if row.TrailingPE.Valid {
			sectorTrailing[row.Sector] = append(sectorTrailing[row.Sector], row.TrailingPE.Float64)
			overallTrailing = append(overallTrailing, row.TrailingPE.Float64)
		}
		if row.ForwardPE.Valid {
			sectorForward[row.Sector] = append(sectorForward[row.Sector], row.ForwardPE.Float64)
			overallForward = append(overallForward, row.ForwardPE.Float64)
		}
	}

	stats := contracts.CohortStats{
		SectorTrailingPE:  make(map[string]contracts.Float, len(sectorTrailing)),
		SectorForwardPE:   make(map[string]contracts.Float, len(sectorForward)),
		OverallTrailingPE: median(overallTrailing),
		OverallForwardPE:  median(overallForward),
	}
	for sector, values := range sectorTrailing {
		stats.SectorTrailingPE[sector] = median(values)
	}
	for sector, values := range sectorForward {
		stats.SectorForwardPE[sector] = median(values)
	}

	return stats
}

// median returns the median of the values, absent for an empty slice.
// Even-length inputs take the mean of the two middle values.
func median(values []float64) contracts.Float {
	if len(values) == 0 {
		return contracts.AbsentFloat()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return contracts.NewFloat(sorted[mid])
	}
	return contracts.NewFloat((sorted[mid-1] + sorted[mid]) / 2)
}
