package contracts

import "context"

// TickerProvider supplies the ticker universe for a run. It returns an
// ordered set of unique, non-empty symbols or an error; a failed
// provider aborts the pipeline before any valuation work starts.
type TickerProvider interface {
	Tickers(ctx context.Context) ([]string, error)
}

// FundamentalsFetcher returns at most one RawSnapshot per requested
// ticker. A ticker that could not be fetched yields a snapshot with
// only the ticker set; fields are never fabricated.
type FundamentalsFetcher interface {
	Fetch(ctx context.Context, tickers []string) ([]RawSnapshot, error)
}

// Valuer converts raw snapshots into valued rows. It never fails: bad
// or missing inputs degrade to absent metrics and unknown verdicts.
type Valuer interface {
	Value(ctx context.Context, raws []RawSnapshot) []ValuedRow
}
