package entity

import "github.com/shopspring/decimal"

// RateOrigin tells which tier of the pricing cache answered a lookup.
type RateOrigin string

const (
	RateFresh     RateOrigin = "fresh"
	RateLastKnown RateOrigin = "last_known"
	RateStatic    RateOrigin = "static"
	RateMissing   RateOrigin = "missing"
)

// RateQuote is a rate together with its origin.
type RateQuote struct {
	Rate   decimal.Decimal
	Origin RateOrigin
}

// Known reports whether the quote carries a usable rate.
func (q RateQuote) Known() bool {
	return q.Origin != "" && q.Origin != RateMissing
}

// Stale reports whether the rate outlived its cache TTL and is served from
// the last successful refresh.
func (q RateQuote) Stale() bool {
	return q.Origin == RateLastKnown
}
