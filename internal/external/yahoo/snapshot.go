package yahoo

import (
	"encoding/json"

	"github.com/valuehunter/hunter/internal/contracts"
)

// number is a Yahoo numeric field. The API wraps numbers in
// {"raw": ..., "fmt": "..."} objects but occasionally returns bare
// numbers or empty objects; all of those decode without error and
// anything unusable is absent.
type number struct {
	value contracts.Float
}

func (n *number) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Raw contracts.Float `json:"raw"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		n.value = wrapped.Raw
		return nil
	}

	// Bare number (or string) fallback.
	var f contracts.Float
	_ = f.UnmarshalJSON(data)
	n.value = f
	return nil
}

// Float returns the decoded value.
func (n number) Float() contracts.Float {
	return n.value
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  interface{}          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		ShortName          string `json:"shortName"`
		LongName           string `json:"longName"`
		Currency           string `json:"currency"`
		RegularMarketPrice number `json:"regularMarketPrice"`
		MarketCap          number `json:"marketCap"`
	} `json:"price"`

	SummaryDetail struct {
		TrailingPE number `json:"trailingPE"`
		ForwardPE  number `json:"forwardPE"`
		PEGRatio   number `json:"pegRatio"`
		MarketCap  number `json:"marketCap"`
	} `json:"summaryDetail"`

	DefaultKeyStatistics struct {
		TrailingEps number `json:"trailingEps"`
		ForwardEps  number `json:"forwardEps"`
		PEGRatio    number `json:"pegRatio"`
		BookValue   number `json:"bookValue"`
	} `json:"defaultKeyStatistics"`

	FinancialData struct {
		CurrentPrice    number `json:"currentPrice"`
		EarningsGrowth  number `json:"earningsGrowth"`
		TargetMeanPrice number `json:"targetMeanPrice"`
	} `json:"financialData"`

	AssetProfile struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`
}

// toRawSnapshot maps a quoteSummary result onto the pipeline's raw
// snapshot, taking the first present value where Yahoo exposes a
// field in more than one module.
func (r quoteSummaryResult) toRawSnapshot(ticker string) contracts.RawSnapshot {
	company := r.Price.ShortName
	if company == "" {
		company = r.Price.LongName
	}

	return contracts.RawSnapshot{
		Ticker:            ticker,
		Company:           company,
		Sector:            r.AssetProfile.Sector,
		Currency:          r.Price.Currency,
		Price:             r.Price.RegularMarketPrice.Float().Or(r.FinancialData.CurrentPrice.Float()),
		MarketCap:         r.Price.MarketCap.Float().Or(r.SummaryDetail.MarketCap.Float()),
		TrailingPE:        r.SummaryDetail.TrailingPE.Float(),
		ForwardPE:         r.SummaryDetail.ForwardPE.Float(),
		TrailingEPS:       r.DefaultKeyStatistics.TrailingEps.Float(),
		ForwardEPS:        r.DefaultKeyStatistics.ForwardEps.Float(),
		EarningsGrowth:    r.FinancialData.EarningsGrowth.Float(),
		PEGRatio:          r.DefaultKeyStatistics.PEGRatio.Float().Or(r.SummaryDetail.PEGRatio.Float()),
		BookValuePerShare: r.DefaultKeyStatistics.BookValue.Float(),
		TargetMeanPrice:   r.FinancialData.TargetMeanPrice.Float(),
	}
}
