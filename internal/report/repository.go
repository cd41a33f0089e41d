package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valuehunter/hunter/internal/contracts"
)

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS hunter;

	CREATE TABLE IF NOT EXISTS hunter.valuations (
		as_of_date            DATE        NOT NULL,
		run_ts_utc            TIMESTAMPTZ NOT NULL,
		ticker                TEXT        NOT NULL,
		company               TEXT        NOT NULL DEFAULT '',
		sector                TEXT        NOT NULL DEFAULT '',
		currency              TEXT        NOT NULL DEFAULT '',
		price                 DOUBLE PRECISION,
		market_cap            DOUBLE PRECISION,
		trailing_pe           DOUBLE PRECISION,
		forward_pe            DOUBLE PRECISION,
		trailing_eps          DOUBLE PRECISION,
		forward_eps           DOUBLE PRECISION,
		earnings_growth       DOUBLE PRECISION,
		book_value_per_share  DOUBLE PRECISION,
		target_mean_price     DOUBLE PRECISION,
		graham_value          DOUBLE PRECISION,
		peg_ratio             DOUBLE PRECISION,
		peg_ratio_source      TEXT        NOT NULL,
		sector_median_pe      DOUBLE PRECISION,
		pe_median_used        DOUBLE PRECISION,
		fair_value            DOUBLE PRECISION,
		fair_value_source     TEXT        NOT NULL,
		margin_of_safety      DOUBLE PRECISION,
		peg_pass              TEXT        NOT NULL,
		pe_vs_sector_pass     TEXT        NOT NULL,
		margin_of_safety_pass TEXT        NOT NULL,
		valuation_hunter      TEXT        NOT NULL,
		valuation             TEXT        NOT NULL,
		pct_diff              DOUBLE PRECISION,
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (as_of_date, ticker)
	)
`

// Repository persists valuation runs to Postgres. One row per
// (as_of_date, ticker); re-running a day overwrites it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a valuation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the hunter schema and valuations table when
// they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun upserts the full valued table for one run.
func (r *Repository) SaveRun(ctx context.Context, stamp Stamp, rows []contracts.ValuedRow) error {
	asOfDate, err := time.Parse("2006-01-02", stamp.AsOfDate)
	if err != nil {
		return fmt.Errorf("invalid as_of_date %q: %w", stamp.AsOfDate, err)
	}
	runTS, err := time.Parse(time.RFC3339, stamp.RunTSUTC)
	if err != nil {
		return fmt.Errorf("invalid run timestamp %q: %w", stamp.RunTSUTC, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if err := r.saveRow(ctx, tx, asOfDate, runTS, row); err != nil {
			return fmt.Errorf("failed to save valuation for %s: %w", row.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) saveRow(ctx context.Context, tx pgx.Tx, asOfDate, runTS time.Time, row contracts.ValuedRow) error {
	query := `
		INSERT INTO hunter.valuations (
			as_of_date, run_ts_utc, ticker, company, sector, currency,
			price, market_cap, trailing_pe, forward_pe,
			trailing_eps, forward_eps, earnings_growth,
			book_value_per_share, target_mean_price,
			graham_value, peg_ratio, peg_ratio_source,
			sector_median_pe, pe_median_used,
			fair_value, fair_value_source, margin_of_safety,
			peg_pass, pe_vs_sector_pass, margin_of_safety_pass,
			valuation_hunter, valuation, pct_diff
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15,
			$16, $17, $18,
			$19, $20,
			$21, $22, $23,
			$24, $25, $26,
			$27, $28, $29
		)
		ON CONFLICT (as_of_date, ticker) DO UPDATE SET
			run_ts_utc = EXCLUDED.run_ts_utc,
			company = EXCLUDED.company,
			sector = EXCLUDED.sector,
			currency = EXCLUDED.currency,
			price = EXCLUDED.price,
			market_cap = EXCLUDED.market_cap,
			trailing_pe = EXCLUDED.trailing_pe,
			forward_pe = EXCLUDED.forward_pe,
			trailing_eps = EXCLUDED.trailing_eps,
			forward_eps = EXCLUDED.forward_eps,
			earnings_growth = EXCLUDED.earnings_growth,
			book_value_per_share = EXCLUDED.book_value_per_share,
			target_mean_price = EXCLUDED.target_mean_price,
			graham_value = EXCLUDED.graham_value,
			peg_ratio = EXCLUDED.peg_ratio,
			peg_ratio_source = EXCLUDED.peg_ratio_source,
			sector_median_pe = EXCLUDED.sector_median_pe,
			pe_median_used = EXCLUDED.pe_median_used,
			fair_value = EXCLUDED.fair_value,
			fair_value_source = EXCLUDED.fair_value_source,
			margin_of_safety = EXCLUDED.margin_of_safety,
			peg_pass = EXCLUDED.peg_pass,
			pe_vs_sector_pass = EXCLUDED.pe_vs_sector_pass,
			margin_of_safety_pass = EXCLUDED.margin_of_safety_pass,
			valuation_hunter = EXCLUDED.valuation_hunter,
			valuation = EXCLUDED.valuation,
			pct_diff = EXCLUDED.pct_diff,
			updated_at = NOW()
	`

	_, err := tx.Exec(ctx, query,
		asOfDate, runTS, row.Ticker, row.Company, row.Sector, row.Currency,
		dbVal(row.Price), dbVal(row.MarketCap), dbVal(row.TrailingPE), dbVal(row.ForwardPE),
		dbVal(row.TrailingEPS), dbVal(row.ForwardEPS), dbVal(row.EarningsGrowth),
		dbVal(row.BookValuePerShare), dbVal(row.TargetMeanPrice),
		dbVal(row.GrahamValue), dbVal(row.PEGRatio), string(row.PEGRatioSource),
		dbVal(row.SectorMedianPE), dbVal(row.PEMedianUsed),
		dbVal(row.FairValue), string(row.FairValueSrc), dbVal(row.MarginOfSafety),
		string(row.PEGPass), string(row.PEVsSectorPass), string(row.MarginOfSafetyPass),
		string(row.ValuationHunter), string(row.Valuation), dbVal(row.PctDiff),
	)

	return err
}

// LatestRun returns the most recent run's stamp and rows, ordered by
// ticker. pgx.ErrNoRows is returned when the table is empty.
func (r *Repository) LatestRun(ctx context.Context) (Stamp, []contracts.ValuedRow, error) {
	var asOfDate time.Time
	var runTS time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT as_of_date, MAX(run_ts_utc)
		FROM hunter.valuations
		GROUP BY as_of_date
		ORDER BY as_of_date DESC
		LIMIT 1
	`).Scan(&asOfDate, &runTS)
	if err != nil {
		return Stamp{}, nil, fmt.Errorf("failed to find latest run: %w", err)
	}

	stamp := Stamp{
		AsOfDate: asOfDate.Format("2006-01-02"),
		RunTSUTC: runTS.UTC().Format(time.RFC3339),
	}

	query := `
		SELECT
			ticker, company, sector, currency,
			price, market_cap, trailing_pe, forward_pe,
			trailing_eps, forward_eps, earnings_growth,
			book_value_per_share, target_mean_price,
			graham_value, peg_ratio, peg_ratio_source,
			sector_median_pe, pe_median_used,
			fair_value, fair_value_source, margin_of_safety,
			peg_pass, pe_vs_sector_pass, margin_of_safety_pass,
			valuation_hunter, valuation, pct_diff
		FROM hunter.valuations
		WHERE as_of_date = $1
		ORDER BY ticker
	`

	pgRows, err := r.pool.Query(ctx, query, asOfDate)
	if err != nil {
		return Stamp{}, nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer pgRows.Close()

	var rows []contracts.ValuedRow
	for pgRows.Next() {
		var row contracts.ValuedRow
		var price, marketCap, trailingPE, forwardPE *float64
		var trailingEPS, forwardEPS, earningsGrowth *float64
		var bvps, targetMean, graham, peg *float64
		var sectorMedianPE, peMedianUsed, fairValue, mos, pctDiff *float64
		var pegSrc, fvSrc, pegPass, pePass, mosPass, hunterCheck, verdict string

		err := pgRows.Scan(
			&row.Ticker, &row.Company, &row.Sector, &row.Currency,
			&price, &marketCap, &trailingPE, &forwardPE,
			&trailingEPS, &forwardEPS, &earningsGrowth,
			&bvps, &targetMean,
			&graham, &peg, &pegSrc,
			&sectorMedianPE, &peMedianUsed,
			&fairValue, &fvSrc, &mos,
			&pegPass, &pePass, &mosPass,
			&hunterCheck, &verdict, &pctDiff,
		)
		if err != nil {
			return Stamp{}, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row.Price = floatFrom(price)
		row.MarketCap = floatFrom(marketCap)
		row.TrailingPE = floatFrom(trailingPE)
		row.ForwardPE = floatFrom(forwardPE)
		row.TrailingEPS = floatFrom(trailingEPS)
		row.ForwardEPS = floatFrom(forwardEPS)
		row.EarningsGrowth = floatFrom(earningsGrowth)
		row.BookValuePerShare = floatFrom(bvps)
		row.TargetMeanPrice = floatFrom(targetMean)
		row.GrahamValue = floatFrom(graham)
		row.PEGRatio = floatFrom(peg)
		row.PEGRatioSource = contracts.PEGSource(pegSrc)
		row.SectorMedianPE = floatFrom(sectorMedianPE)
		row.PEMedianUsed = floatFrom(peMedianUsed)
		row.FairValue = floatFrom(fairValue)
		row.FairValueSrc = contracts.FairValueSource(fvSrc)
		row.MarginOfSafety = floatFrom(mos)
		row.PEGPass = contracts.Check(pegPass)
		row.PEVsSectorPass = contracts.Check(pePass)
		row.MarginOfSafetyPass = contracts.Check(mosPass)
		row.ValuationHunter = contracts.Check(hunterCheck)
		row.Valuation = contracts.Verdict(verdict)
		row.PctDiff = floatFrom(pctDiff)

		rows = append(rows, row)
	}

	if err := pgRows.Err(); err != nil {
		return Stamp{}, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stamp, rows, nil
}

// dbVal maps an optional float to its SQL argument: the value when
// present, NULL otherwise.
func dbVal(f contracts.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

func floatFrom(p *float64) contracts.Float {
	if p == nil {
		return contracts.AbsentFloat()
	}
	return contracts.NewFloat(*p)
}
