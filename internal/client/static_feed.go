package client

import (
	"context"
	"strings"

	"wallet_engine/internal/app/port"

	"github.com/shopspring/decimal"
)

// staticRateFeed serves fixed rates keyed by fiat currency and feed id.
// Used in offline mode and tests.
type staticRateFeed struct {
	rates map[string]map[string]decimal.Decimal
}

// NewStaticRateFeed copies the given rates into a new feed.
func NewStaticRateFeed(rates map[string]map[string]decimal.Decimal) port.RateFeed {
	copied := make(map[string]map[string]decimal.Decimal, len(rates))
	for fiat, byID := range rates {
		inner := make(map[string]decimal.Decimal, len(byID))
		for id, r := range byID {
			inner[strings.ToLower(id)] = r
		}
		copied[strings.ToLower(fiat)] = inner
	}
	return &staticRateFeed{rates: copied}
}

func (f *staticRateFeed) Name() string { return "static" }

func (f *staticRateFeed) FetchRates(ctx context.Context, feedIDs []string, fiat string) (map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byID := f.rates[strings.ToLower(fiat)]
	out := make(map[string]decimal.Decimal, len(feedIDs))
	for _, id := range feedIDs {
		if r, ok := byID[strings.ToLower(id)]; ok {
			out[id] = r
		}
	}
	return out, nil
}
