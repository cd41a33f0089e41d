package universe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	tickers []string
	err     error
	calls   int
}

func (s *stubSource) Tickers(ctx context.Context) ([]string, error) {
	s.calls++
	return s.tickers, s.err
}

func TestProvider_PrefersWikipedia(t *testing.T) {
	wiki := &stubSource{tickers: []string{"AAPL", "MSFT"}}
	file := &stubSource{tickers: []string{"FALLBACK"}}

	provider := NewProvider(wiki, file, true, testLogger())
	tickers, err := provider.Tickers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
	assert.Zero(t, file.calls, "fallback untouched when scrape succeeds")
}

func TestProvider_FallsBackOnScrapeFailure(t *testing.T) {
	wiki := &stubSource{err: errors.New("blocked")}
	file := &stubSource{tickers: []string{"AAPL"}}

	provider := NewProvider(wiki, file, true, testLogger())
	tickers, err := provider.Tickers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, tickers)
}

func TestProvider_WikipediaDisabled(t *testing.T) {
	wiki := &stubSource{tickers: []string{"WIKI"}}
	file := &stubSource{tickers: []string{"FILE"}}

	provider := NewProvider(wiki, file, false, testLogger())
	tickers, err := provider.Tickers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"FILE"}, tickers)
	assert.Zero(t, wiki.calls)
}

func TestProvider_BothFail(t *testing.T) {
	wiki := &stubSource{err: errors.New("blocked")}
	file := &stubSource{err: errors.New("no file")}

	provider := NewProvider(wiki, file, true, testLogger())
	_, err := provider.Tickers(context.Background())
	assert.Error(t, err)
}
