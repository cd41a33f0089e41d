package fundamentals

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/logger"
)

// FileSource reads raw snapshots from a CSV file instead of the live
// API. Used for offline valuation of a previously captured table.
type FileSource struct {
	path   string
	logger *logger.Logger
}

// NewFileSource creates a file-backed snapshot source.
func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: log.WithField("module", "fundamentals"),
	}
}

// Fetch implements contracts.FundamentalsFetcher. The tickers argument
// is ignored: the file defines its own universe.
func (s *FileSource) Fetch(ctx context.Context, tickers []string) ([]contracts.RawSnapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot file %s: %w", s.path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("snapshot file %s has no data rows", s.path)
	}

	cols := columnIndex(records[0])
	if _, ok := cols["ticker"]; !ok {
		return nil, fmt.Errorf("snapshot file %s has no ticker column", s.path)
	}

	snapshots := make([]contracts.RawSnapshot, 0, len(records)-1)
	for _, record := range records[1:] {
		snapshots = append(snapshots, snapshotFromRecord(record, cols))
	}

	s.logger.WithFields(map[string]interface{}{
		"path": s.path,
		"rows": len(snapshots),
	}).Info("Loaded snapshots from file")

	return snapshots, nil
}

// columnIndex maps lowercased header names to positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func snapshotFromRecord(record []string, cols map[string]int) contracts.RawSnapshot {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	num := func(name string) contracts.Float {
		s := cell(name)
		if s == "" {
			return contracts.AbsentFloat()
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return contracts.AbsentFloat()
		}
		return contracts.NewFloat(v)
	}

	return contracts.RawSnapshot{
		Ticker:            cell("ticker"),
		Company:           cell("company"),
		Sector:            cell("sector"),
		Currency:          cell("currency"),
		Price:             num("price"),
		MarketCap:         num("market_cap"),
		TrailingPE:        num("trailing_pe"),
		ForwardPE:         num("forward_pe"),
		TrailingEPS:       num("trailing_eps"),
		ForwardEPS:        num("forward_eps"),
		EarningsGrowth:    num("earnings_growth"),
		PEGRatio:          num("peg_ratio"),
		BookValuePerShare: num("book_value_per_share"),
		TargetMeanPrice:   num("target_mean_price"),
	}
}
