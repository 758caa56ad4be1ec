package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCoinGecko(t *testing.T, handler http.HandlerFunc) *coinGeckoClientImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCoinGeckoClient(srv.URL, "demo-key", 2*time.Second, 6000, 2, zap.NewNop()).(*coinGeckoClientImpl)
}

func TestCoinGeckoFetchRates(t *testing.T) {
	c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "tether,bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tether":{"usd":1.0001},"bitcoin":{"usd":60000.12}}`))
	})

	rates, err := c.FetchRates(context.Background(), []string{"tether", "bitcoin"}, "USD")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.0001").Equal(rates["tether"]))
	assert.True(t, decimal.RequireFromString("60000.12").Equal(rates["bitcoin"]))
}

func TestCoinGeckoSkipsMissingCurrency(t *testing.T) {
	c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tether":{"eur":0.92},"bitcoin":{"usd":60000}}`))
	})

	rates, err := c.FetchRates(context.Background(), []string{"tether", "bitcoin"}, "usd")
	require.NoError(t, err)
	assert.Len(t, rates, 1)
	_, ok := rates["tether"]
	assert.False(t, ok)
}

func TestCoinGeckoErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"status":{"error_code":429,"error_message":"rate limited"}}`))
		})
		_, err := c.FetchRates(context.Background(), []string{"tether"}, "usd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[not json`))
		})
		_, err := c.FetchRates(context.Background(), []string{"tether"}, "usd")
		assert.Error(t, err)
	})

	t.Run("too many ids", func(t *testing.T) {
		c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := c.FetchRates(context.Background(), []string{"a", "b", "c"}, "usd")
		assert.Error(t, err)
	})
}

func TestCoinGeckoEmptyIDs(t *testing.T) {
	c := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	rates, err := c.FetchRates(context.Background(), nil, "usd")
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestStaticRateFeed(t *testing.T) {
	feed := NewStaticRateFeed(map[string]map[string]decimal.Decimal{
		"USD": {"Tether": decimal.NewFromInt(1)},
	})
	assert.Equal(t, "static", feed.Name())

	rates, err := feed.FetchRates(context.Background(), []string{"tether", "bitcoin"}, "usd")
	require.NoError(t, err)
	assert.Len(t, rates, 1)
	assert.True(t, decimal.NewFromInt(1).Equal(rates["tether"]))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = feed.FetchRates(ctx, []string{"tether"}, "usd")
	assert.ErrorIs(t, err, context.Canceled)
}
