package valuation

import (
	"strings"

	"github.com/valuehunter/hunter/internal/contracts"
)

// NormalizeTicker canonicalizes a raw symbol: trimmed, uppercased,
// with '.' replaced by '-' (the exchange-suffix convention used by the
// fundamentals source, e.g. BRK.B → BRK-B).
func NormalizeTicker(raw string) string {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	return strings.ReplaceAll(ticker, ".", "-")
}

// Normalize cleanses a fetched table into engine input. The result is
// ordered like the input, at most as long, with unique non-empty
// tickers. Normalization is a fixed point: running it on its own
// output changes nothing.
func Normalize(raws []contracts.RawSnapshot) []contracts.NormalizedRow {
	rows := make([]contracts.NormalizedRow, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		ticker := NormalizeTicker(raw.Ticker)
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		rows = append(rows, normalizeRow(raw, ticker))
	}

	return rows
}

func normalizeRow(raw contracts.RawSnapshot, ticker string) contracts.NormalizedRow {
	row := contracts.NormalizedRow(raw)
	row.Ticker = ticker

	sector := strings.TrimSpace(raw.Sector)
	if sector == "" {
		sector = contracts.UnknownSector
	}
	row.Sector = sector

	// Re-sanitize every numeric field; the fetcher is tolerant but raw
	// snapshots can also be built from local CSV input.
	row.Price = positiveOnly(raw.Price)
	row.MarketCap = positiveOnly(raw.MarketCap)
	row.TrailingPE = raw.TrailingPE.Sanitize()
	row.ForwardPE = raw.ForwardPE.Sanitize()
	row.TrailingEPS = raw.TrailingEPS.Sanitize()
	row.ForwardEPS = raw.ForwardEPS.Sanitize()
	row.EarningsGrowth = raw.EarningsGrowth.Sanitize()
	row.PEGRatio = raw.PEGRatio.Sanitize()
	row.BookValuePerShare = raw.BookValuePerShare.Sanitize()
	row.TargetMeanPrice = raw.TargetMeanPrice.Sanitize()

	return row
}

// positiveOnly coerces non-positive values to absent. Applied to price
// and market cap, where zero or negative readings are feed glitches.
func positiveOnly(f contracts.Float) contracts.Float {
	f = f.Sanitize()
	if f.Valid && f.Float64 <= 0 {
		return contracts.AbsentFloat()
	}
	return f
}
