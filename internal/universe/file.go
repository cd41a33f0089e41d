package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/valuehunter/hunter/internal/valuation"
	"github.com/valuehunter/hunter/pkg/logger"
)

// FileSource loads tickers from a local CSV fallback file. The file
// either has a "symbol" column or the symbols in its first column.
type FileSource struct {
	path   string
	logger *logger.Logger
}

// NewFileSource creates a CSV-file ticker source.
func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: log.WithField("module", "universe"),
	}
}

// Tickers reads and normalizes the fallback file.
func (s *FileSource) Tickers(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open fallback file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fallback file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fallback file %s is empty", s.path)
	}

	col := symbolColumn(records[0])

	seen := make(map[string]bool)
	tickers := make([]string, 0, len(records))
	for _, record := range records[1:] {
		if len(record) <= col {
			continue
		}
		ticker := valuation.NormalizeTicker(record[col])
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers in fallback file %s", s.path)
	}

	sort.Strings(tickers)
	s.logger.WithFields(map[string]interface{}{
		"path":  s.path,
		"count": len(tickers),
	}).Info("Loaded tickers from fallback file")

	return tickers, nil
}

// symbolColumn prefers a header named "symbol", else the first column.
func symbolColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "symbol") {
			return i
		}
	}
	return 0
}
