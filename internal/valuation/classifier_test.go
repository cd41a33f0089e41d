package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valuehunter/hunter/internal/contracts"
)

func TestTriState(t *testing.T) {
	assert.Equal(t, contracts.CheckUnknown, triState(false, true), "invalid inputs are unknown even when the condition holds")
	assert.Equal(t, contracts.CheckUnknown, triState(false, false))
	assert.Equal(t, contracts.CheckPass, triState(true, true))
	assert.Equal(t, contracts.CheckFail, triState(true, false))
}

func TestClassify_Checks(t *testing.T) {
	th := contracts.DefaultThresholds()

	valued := contracts.ValuedRow{
		PEGRatio:       contracts.NewFloat(0.8),
		TrailingPE:     contracts.NewFloat(15),
		PEMedianUsed:   contracts.NewFloat(20),
		MarginOfSafety: contracts.NewFloat(0.1),
	}

	got := classify(valued, th)
	assert.Equal(t, contracts.CheckPass, got.PEGPass)
	assert.Equal(t, contracts.CheckPass, got.PEVsSectorPass)
	assert.Equal(t, contracts.CheckPass, got.MarginOfSafetyPass)
	assert.Equal(t, contracts.CheckPass, got.ValuationHunter)
}

func TestClassify_TriStateMonotonicity(t *testing.T) {
	th := contracts.DefaultThresholds()

	// peg_pass is unknown iff peg is absent or ≤ 0.
	for _, peg := range []contracts.Float{contracts.AbsentFloat(), contracts.NewFloat(0), contracts.NewFloat(-1)} {
		got := classify(contracts.ValuedRow{PEGRatio: peg}, th)
		assert.Equal(t, contracts.CheckUnknown, got.PEGPass)
	}
	got := classify(contracts.ValuedRow{PEGRatio: contracts.NewFloat(2)}, th)
	assert.Equal(t, contracts.CheckFail, got.PEGPass, "peg 2 ≥ max 1.0 fails")

	// pe_vs_sector needs both trailing PE and the used median.
	got = classify(contracts.ValuedRow{TrailingPE: contracts.NewFloat(15)}, th)
	assert.Equal(t, contracts.CheckUnknown, got.PEVsSectorPass)
	got = classify(contracts.ValuedRow{PEMedianUsed: contracts.NewFloat(20)}, th)
	assert.Equal(t, contracts.CheckUnknown, got.PEVsSectorPass)

	// margin_of_safety_pass follows margin presence.
	got = classify(contracts.ValuedRow{}, th)
	assert.Equal(t, contracts.CheckUnknown, got.MarginOfSafetyPass)
	got = classify(contracts.ValuedRow{MarginOfSafety: contracts.NewFloat(-0.5)}, th)
	assert.Equal(t, contracts.CheckFail, got.MarginOfSafetyPass)
}

func TestHunterVerdict_UnknownDominatesFail(t *testing.T) {
	pass := contracts.CheckPass
	fail := contracts.CheckFail
	unknown := contracts.CheckUnknown

	tests := []struct {
		name   string
		checks []contracts.Check
		want   contracts.Check
	}{
		{"all pass", []contracts.Check{pass, pass, pass}, pass},
		{"one fail", []contracts.Check{pass, fail, pass}, fail},
		{"all fail", []contracts.Check{fail, fail, fail}, fail},
		{"one unknown", []contracts.Check{pass, unknown, pass}, unknown},
		{"unknown beats fail", []contracts.Check{fail, unknown, fail}, unknown},
		{"all unknown", []contracts.Check{unknown, unknown, unknown}, unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hunterVerdict(tt.checks...))
		})
	}
}

func TestPriceVerdict(t *testing.T) {
	th := contracts.DefaultThresholds()
	fair := contracts.NewFloat(100)

	tests := []struct {
		name  string
		price contracts.Float
		fair  contracts.Float
		want  contracts.Verdict
	}{
		{"at undervalued boundary", contracts.NewFloat(90), fair, contracts.VerdictUndervalued},
		{"below boundary", contracts.NewFloat(50), fair, contracts.VerdictUndervalued},
		{"at overvalued boundary", contracts.NewFloat(110), fair, contracts.VerdictOvervalued},
		{"between bands", contracts.NewFloat(100), fair, contracts.VerdictFair},
		{"just inside fair band", contracts.NewFloat(90.01), fair, contracts.VerdictFair},
		{"absent price", contracts.AbsentFloat(), fair, contracts.VerdictUnknown},
		{"absent fair value", contracts.NewFloat(90), contracts.AbsentFloat(), contracts.VerdictUnknown},
		{"non-positive fair value", contracts.NewFloat(90), contracts.NewFloat(0), contracts.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priceVerdict(tt.price, tt.fair, th))
		})
	}
}

func TestPctDiff(t *testing.T) {
	got := pctDiff(contracts.NewFloat(90), contracts.NewFloat(100))
	assert.InDelta(t, -0.1, got.Float64, 1e-9)

	assert.False(t, pctDiff(contracts.NewFloat(90), contracts.AbsentFloat()).Valid)
	assert.False(t, pctDiff(contracts.AbsentFloat(), contracts.NewFloat(100)).Valid)
}
