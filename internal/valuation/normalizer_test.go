package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/internal/contracts"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BRK.B", "BRK-B"},
		{" aapl ", "AAPL"},
		{"brk.a", "BRK-A"},
		{"", ""},
		{"  ", ""},
		{"MSFT", "MSFT"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTicker(tt.in), "NormalizeTicker(%q)", tt.in)
	}
}

func TestNormalize_DropsEmptyAndDedupes(t *testing.T) {
	raws := []contracts.RawSnapshot{
		{Ticker: "aapl", Company: "Apple (first)"},
		{Ticker: "  "},
		{Ticker: "AAPL", Company: "Apple (dup)"},
		{Ticker: "brk.b"},
		{Ticker: "BRK-B", Company: "dup after normalization"},
	}

	rows := Normalize(raws)

	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, "Apple (first)", rows[0].Company, "first occurrence wins")
	assert.Equal(t, "BRK-B", rows[1].Ticker)
	assert.Equal(t, "", rows[1].Company, "BRK.B came before BRK-B")
}

func TestNormalize_CoercesInvalidNumerics(t *testing.T) {
	raws := []contracts.RawSnapshot{
		{
			Ticker:     "NEG",
			Price:      contracts.Float{Float64: -5, Valid: true},
			MarketCap:  contracts.Float{Float64: 0, Valid: true},
			TrailingPE: contracts.Float{Float64: math.Inf(1), Valid: true},
			ForwardPE:  contracts.Float{Float64: math.NaN(), Valid: true},
		},
	}

	rows := Normalize(raws)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.False(t, row.Price.Valid, "non-positive price becomes absent")
	assert.False(t, row.MarketCap.Valid, "zero market cap becomes absent")
	assert.False(t, row.TrailingPE.Valid, "+Inf becomes absent")
	assert.False(t, row.ForwardPE.Valid, "NaN becomes absent")
}

func TestNormalize_SectorDefaultsToUnknown(t *testing.T) {
	rows := Normalize([]contracts.RawSnapshot{
		{Ticker: "A", Sector: ""},
		{Ticker: "B", Sector: "  "},
		{Ticker: "C", Sector: "Technology"},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, contracts.UnknownSector, rows[0].Sector)
	assert.Equal(t, contracts.UnknownSector, rows[1].Sector)
	assert.Equal(t, "Technology", rows[2].Sector)
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []contracts.RawSnapshot{
		{Ticker: "brk.b", Sector: "", Price: contracts.NewFloat(-1)},
		{Ticker: "AAPL", Sector: "Technology", Price: contracts.NewFloat(180)},
		{Ticker: "aapl "},
	}

	once := Normalize(raws)

	// Feed the normalized table back through.
	again := make([]contracts.RawSnapshot, len(once))
	for i, row := range once {
		again[i] = contracts.RawSnapshot(row)
	}
	twice := Normalize(again)

	assert.Equal(t, once, twice, "normalization must be a fixed point")
}

func TestNormalize_EmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]contracts.RawSnapshot{}))
}
