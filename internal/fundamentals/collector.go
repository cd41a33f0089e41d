package fundamentals

import (
	"context"
	"sync"
	"time"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/logger"
	"github.com/valuehunter/hunter/pkg/redis"
)

// snapshotClient is the per-ticker fetch dependency (the Yahoo client
// in production).
type snapshotClient interface {
	FetchSnapshot(ctx context.Context, ticker string) (contracts.RawSnapshot, error)
}

// Collector fans a ticker list out over a worker pool and assembles
// the raw snapshot table in request order. A ticker whose fetch fails
// still yields a snapshot with only the ticker set; the valuation
// engine degrades it to unknown rather than dropping it silently.
type Collector struct {
	client  snapshotClient
	cache   *redis.Cache
	ttl     time.Duration
	workers int
	logger  *logger.Logger
}

// NewCollector creates a fundamentals collector. cache may be backed
// by a disabled Redis client, in which case every lookup misses.
func NewCollector(client snapshotClient, cache *redis.Cache, ttl time.Duration, workers int, log *logger.Logger) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		workers: workers,
		logger:  log.WithField("module", "fundamentals"),
	}
}

// Fetch implements contracts.FundamentalsFetcher.
func (c *Collector) Fetch(ctx context.Context, tickers []string) ([]contracts.RawSnapshot, error) {
	snapshots := make([]contracts.RawSnapshot, len(tickers))

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": c.workers,
	}).Info("Starting fundamentals collection")

	indexCh := make(chan int, len(tickers))
	var wg sync.WaitGroup
	var failed int64
	var mu sync.Mutex

	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				snapshot, ok := c.fetchOne(ctx, tickers[i])
				snapshots[i] = snapshot
				if !ok {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	for i := range tickers {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	c.logger.WithFields(map[string]interface{}{
		"fetched": len(snapshots),
		"failed":  failed,
	}).Info("Fundamentals collection completed")

	return snapshots, nil
}

// fetchOne resolves one ticker via cache or the client. The bool
// reports whether a live or cached snapshot was obtained.
func (c *Collector) fetchOne(ctx context.Context, ticker string) (contracts.RawSnapshot, bool) {
	var cached contracts.RawSnapshot
	if found, err := c.cache.Get(ctx, redis.SnapshotKey(ticker), &cached); err == nil && found {
		c.logger.WithField("ticker", ticker).Debug("Snapshot cache hit")
		return cached, true
	}

	snapshot, err := c.client.FetchSnapshot(ctx, ticker)
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Fundamentals fetch failed")
		return contracts.RawSnapshot{Ticker: ticker}, false
	}

	if err := c.cache.Set(ctx, redis.SnapshotKey(ticker), snapshot, c.ttl); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("Snapshot cache write failed")
	}

	return snapshot, true
}
