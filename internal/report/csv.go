package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/logger"
)

// columns is the persisted column order. Downstream consumers key on
// position, so this order is part of the output contract.
var columns = []string{
	"as_of_date",
	"run_ts_utc",
	"ticker",
	"company",
	"sector",
	"price",
	"peg_ratio",
	"peg_ratio_source",
	"trailing_pe",
	"sector_median_pe",
	"pe_median_used",
	"forward_pe",
	"earnings_growth",
	"trailing_eps",
	"forward_eps",
	"book_value_per_share",
	"graham_value",
	"margin_of_safety",
	"peg_pass",
	"pe_vs_sector_pass",
	"margin_of_safety_pass",
	"valuation_hunter",
	"fair_value",
	"fair_value_source",
	"valuation",
	"pct_diff",
	"currency",
	"market_cap",
	"target_mean_price",
}

// Stamp carries the run metadata added to every output row. The
// business date is taken in the configured timezone; the run
// timestamp stays UTC for traceability.
type Stamp struct {
	AsOfDate string // YYYY-MM-DD
	RunTSUTC string // RFC3339, Z suffix
}

// StampAt builds the stamp for a run started at now. The business
// date is taken in loc (the exchange timezone) so a late-evening UTC
// run still lands on the trading day it describes.
func StampAt(now time.Time, loc *time.Location) Stamp {
	return Stamp{
		AsOfDate: now.In(loc).Format("2006-01-02"),
		RunTSUTC: now.UTC().Format(time.RFC3339),
	}
}

// CSVWriter writes the valued table to the output directory: a
// "latest" file plus an optional dated copy.
type CSVWriter struct {
	dir       string
	basename  string
	datedCopy bool
	logger    *logger.Logger
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(dir, basename string, datedCopy bool, log *logger.Logger) *CSVWriter {
	return &CSVWriter{
		dir:       dir,
		basename:  basename,
		datedCopy: datedCopy,
		logger:    log.WithField("module", "report"),
	}
}

// Write persists the table and returns the paths written.
func (w *CSVWriter) Write(rows []contracts.ValuedRow, stamp Stamp) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	latest := filepath.Join(w.dir, w.basename)
	if err := writeCSV(latest, rows, stamp); err != nil {
		return nil, err
	}
	paths := []string{latest}
	w.logger.WithField("path", latest).Info("Wrote latest CSV")

	if w.datedCopy {
		dated := filepath.Join(w.dir, fmt.Sprintf("nasdaq100_valuations_%s.csv", stamp.AsOfDate))
		if dated != latest {
			if err := writeCSV(dated, rows, stamp); err != nil {
				return nil, err
			}
			paths = append(paths, dated)
		}
		w.logger.WithField("path", dated).Info("Wrote dated CSV")
	}

	return paths, nil
}

func writeCSV(path string, rows []contracts.ValuedRow, stamp Stamp) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(record(row, stamp)); err != nil {
			return fmt.Errorf("write row %s: %w", row.Ticker, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// record renders one row in column order. Absent numerics become
// empty cells.
func record(row contracts.ValuedRow, stamp Stamp) []string {
	return []string{
		stamp.AsOfDate,
		stamp.RunTSUTC,
		row.Ticker,
		row.Company,
		row.Sector,
		row.Price.String(),
		row.PEGRatio.String(),
		string(row.PEGRatioSource),
		row.TrailingPE.String(),
		row.SectorMedianPE.String(),
		row.PEMedianUsed.String(),
		row.ForwardPE.String(),
		row.EarningsGrowth.String(),
		row.TrailingEPS.String(),
		row.ForwardEPS.String(),
		row.BookValuePerShare.String(),
		row.GrahamValue.String(),
		row.MarginOfSafety.String(),
		string(row.PEGPass),
		string(row.PEVsSectorPass),
		string(row.MarginOfSafetyPass),
		string(row.ValuationHunter),
		row.FairValue.String(),
		string(row.FairValueSrc),
		string(row.Valuation),
		row.PctDiff.String(),
		row.Currency,
		row.MarketCap.String(),
		row.TargetMeanPrice.String(),
	}
}
