// Package format renders token and fiat amounts for display.
// All functions are pure and defined for every decimal input.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	fiatDecimals     = 2
	minTokenDecimals = 2
	fiatSuffix       = "USD"
	emptyAddress     = "N/A"
	shortAddressMin  = 15
	shortAddressKeep = 8
)

var dustThreshold = decimal.New(1, -2) // 0.01

// displaySymbols overrides the upper-cased ticker for assets with a branded symbol.
var displaySymbols = map[string]string{
	"usdt": "USD₮",
	"xaut": "XAU₮",
}

// FiatAmount renders a fiat amount with two fixed decimals and en-US grouping.
// Positive amounts below 0.01 render as "< 0.01" so dust never looks like zero.
func FiatAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "0.00"
	}
	if amount.IsNegative() {
		abs := amount.Abs()
		rendered := groupThousands(abs.StringFixed(fiatDecimals))
		if rendered == "0.00" {
			return rendered
		}
		return "-" + rendered
	}
	if amount.LessThan(dustThreshold) {
		return "< 0.01"
	}
	return groupThousands(amount.StringFixed(fiatDecimals))
}

// FiatValue is FiatAmount followed by the currency code.
func FiatValue(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = fiatSuffix
	}
	return FiatAmount(amount) + " " + strings.ToUpper(currency)
}

// TokenAmount renders a token amount followed by its display symbol.
// An empty denomination renders the number only.
func TokenAmount(amount decimal.Decimal, denomination string) string {
	value := TokenValue(amount)
	if denomination == "" {
		return value
	}
	return value + " " + DisplaySymbol(denomination)
}

// TokenValue renders a token amount with a precision that scales with its
// magnitude: max(ceil(|log10(amount)|), 2) fraction digits, trailing zeros trimmed.
func TokenValue(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "0.00"
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	places := TokenPrecision(amount)
	rendered := trimFraction(amount.StringFixed(places))
	if rendered == "0" {
		return "0.00"
	}
	return sign + groupThousands(rendered)
}

// TokenPrecision returns the number of fraction digits TokenValue uses for amount.
// It is computed on the decimal representation, so exact powers of ten are not
// subject to floating point error.
func TokenPrecision(amount decimal.Decimal) int32 {
	amount = amount.Abs()
	if amount.IsZero() {
		return minTokenDecimals
	}

	// amount = coefficient * 10^exponent; magnitude is the number of integer digits.
	digits := int32(len(amount.Coefficient().String()))
	magnitude := amount.Exponent() + digits

	var places int32
	if amount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		// 10^(m-1) <= amount < 10^m
		places = magnitude
		if amount.Equal(decimal.New(1, magnitude-1)) {
			places = magnitude - 1
		}
	} else {
		// 10^(m-1) <= amount < 10^m with m <= 0, so ceil(-log10(amount)) == 1-m
		places = 1 - magnitude
	}

	if places < minTokenDecimals {
		return minTokenDecimals
	}
	return places
}

// DisplaySymbol returns the ticker shown next to amounts of a denomination.
func DisplaySymbol(denomination string) string {
	if s, ok := displaySymbols[strings.ToLower(denomination)]; ok {
		return s
	}
	return strings.ToUpper(denomination)
}

// ShortAddress shortens long addresses to their first and last eight characters.
func ShortAddress(address string) string {
	if address == "" {
		return emptyAddress
	}
	if len(address) <= shortAddressMin {
		return address
	}
	return address[:shortAddressKeep] + "..." + address[len(address)-shortAddressKeep:]
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// groupThousands inserts en-US thousands separators into a plain decimal string.
func groupThousands(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
