package port

import (
	"context"
	"time"

	"wallet_engine/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PricingSource supplies exchange rates between an asset denomination and a
// fiat currency. Lookups never perform I/O; an unknown rate is reported with
// ok == false and callers treat it as price 0.
type PricingSource interface {
	Rate(denomination, fiat string) (decimal.Decimal, bool)
	// Quote is Rate with the cache tier the rate came from.
	Quote(denomination, fiat string) entity.RateQuote
	// Convert returns price*amount, or zero when the price is unknown.
	Convert(amount decimal.Decimal, denomination, fiat string) decimal.Decimal
	// ConvertToAsset is the inverse of Convert. ok is false when the price is unknown or zero.
	ConvertToAsset(fiatAmount decimal.Decimal, denomination, fiat string) (decimal.Decimal, bool)
	Initialized() bool
}

// PricingService is a PricingSource that keeps itself fresh from a rate feed.
type PricingService interface {
	PricingSource
	// Refresh pulls the latest rates. Feed failures are logged and leave the
	// previous rates in place; the returned error is informational only.
	Refresh(ctx context.Context) error
	// Run refreshes rates every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

// RateFeed is a live source of exchange rates, e.g. CoinGecko.
type RateFeed interface {
	// FetchRates returns the price of each feed id in the given fiat currency.
	// Ids the feed does not know are absent from the result.
	FetchRates(ctx context.Context, feedIDs []string, fiat string) (map[string]decimal.Decimal, error)
	Name() string
}
