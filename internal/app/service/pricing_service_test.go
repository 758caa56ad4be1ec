package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingRefreshAndLookup(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{
		"tether":  dec("1"),
		"bitcoin": dec("60000"),
	}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{FiatCurrencies: []string{"usd"}})
	assert.False(t, s.Initialized())

	_, ok := s.Rate("btc", "usd")
	assert.False(t, ok)
	assert.True(t, s.Convert(dec("1"), "btc", "usd").IsZero())

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.Initialized())

	r, ok := s.Rate("BTC", "USD")
	require.True(t, ok)
	assert.True(t, dec("60000").Equal(r))
	assert.True(t, dec("120").Equal(s.Convert(dec("0.002"), "btc", "usd")))

	units, ok := s.ConvertToAsset(dec("120"), "btc", "usd")
	require.True(t, ok)
	assert.True(t, dec("0.002").Equal(units))

	// xaut has a feed id the feed does not know
	_, ok = s.Rate("xaut", "usd")
	assert.False(t, ok)
}

func TestPricingFallsBackToLastKnownAndStatic(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{"bitcoin": dec("60000")}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{
		FiatCurrencies: []string{"usd"},
		CacheTTL:       20 * time.Millisecond,
		StaticRates:    map[string]map[string]decimal.Decimal{"usd": {"usdt": dec("1")}},
	})

	r, ok := s.Rate("usdt", "usd")
	require.True(t, ok, "static peg is served before any refresh")
	assert.True(t, dec("1").Equal(r))

	require.NoError(t, s.Refresh(context.Background()))

	feed.setErr(errors.New("feed down"))
	err := s.Refresh(context.Background())
	assert.Error(t, err)

	time.Sleep(40 * time.Millisecond)

	r, ok = s.Rate("btc", "usd")
	require.True(t, ok, "expired fresh rate degrades to last known")
	assert.True(t, dec("60000").Equal(r))
}

func TestPricingQuoteTurnsStaleAfterTTL(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{"bitcoin": dec("60000")}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{
		FiatCurrencies: []string{"usd"},
		CacheTTL:       10 * time.Millisecond,
		StaticRates:    map[string]map[string]decimal.Decimal{"usd": {"usdt": dec("1")}},
	})
	agg := newTestAggregator(t)
	records := []entity.BalanceRecord{{Denomination: "btc", NetworkType: "segwit", Value: "1"}}

	q := s.Quote("btc", "usd")
	assert.Equal(t, entity.RateMissing, q.Origin)
	assert.Equal(t, entity.RateStatic, s.Quote("usdt", "usd").Origin)
	assert.False(t, s.Quote("usdt", "usd").Stale())

	require.NoError(t, s.Refresh(context.Background()))
	q = s.Quote("btc", "usd")
	assert.Equal(t, entity.RateFresh, q.Origin)
	assert.False(t, q.Stale())
	views := agg.Aggregate([]string{"btc"}, records, s)
	require.Len(t, views, 1)
	assert.False(t, views[0].PriceStale)

	time.Sleep(30 * time.Millisecond)

	q = s.Quote("btc", "usd")
	assert.Equal(t, entity.RateLastKnown, q.Origin)
	assert.True(t, q.Stale())
	assert.True(t, dec("60000").Equal(q.Rate), "stale rate keeps the last known value")
	views = agg.Aggregate([]string{"btc"}, records, s)
	require.Len(t, views, 1)
	assert.True(t, views[0].PriceStale)
	assert.True(t, dec("60000").Equal(views[0].TotalBalanceFiat))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, entity.RateFresh, s.Quote("btc", "usd").Origin)
}

func TestPricingFeedFailureBeforeFirstSuccess(t *testing.T) {
	feed := &fakeRateFeed{err: errors.New("unreachable")}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{FiatCurrencies: []string{"usd"}})

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.False(t, s.Initialized())

	_, ok := s.Rate("btc", "usd")
	assert.False(t, ok)
	_, ok = s.ConvertToAsset(dec("10"), "btc", "usd")
	assert.False(t, ok)
}

func TestPricingBatchesFeedIDs(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{
		FiatCurrencies:   []string{"usd", "eur"},
		MaxIDsPerRequest: 1,
	})

	require.NoError(t, s.Refresh(context.Background()))
	// three built-in assets with feed ids, two fiat currencies
	assert.Equal(t, 6, feed.callCount())
}

func TestPricingIgnoresNegativeRates(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{"bitcoin": dec("-1")}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{FiatCurrencies: []string{"usd"}})

	require.NoError(t, s.Refresh(context.Background()))
	_, ok := s.Rate("btc", "usd")
	assert.False(t, ok)
}

func TestPricingRunStopsOnCancel(t *testing.T) {
	feed := &fakeRateFeed{rates: map[string]decimal.Decimal{"bitcoin": dec("1")}}
	s := NewPricingService(feed, testCatalog(t), logger.Nop(), PricingOptions{FiatCurrencies: []string{"usd"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return feed.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, s.Initialized())
}
