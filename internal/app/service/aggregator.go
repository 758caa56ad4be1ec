package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// Aggregator turns raw balance records into per-asset views.
// It is stateless apart from the catalog and never performs I/O.
type Aggregator struct {
	catalog port.Catalog
	fiat    string
	logger  port.Logger
}

// NewAggregator creates an aggregator pricing views in the given fiat currency.
func NewAggregator(catalog port.Catalog, fiat string, l port.Logger) *Aggregator {
	if fiat == "" {
		fiat = "usd"
	}
	return &Aggregator{
		catalog: catalog,
		fiat:    strings.ToLower(fiat),
		logger:  l.With("component", "aggregator"),
	}
}

// Fiat returns the currency the aggregator prices views in.
func (a *Aggregator) Fiat() string {
	return a.fiat
}

// Aggregate builds the views of the enabled assets, sorted for display.
func (a *Aggregator) Aggregate(enabledAssets []string, records []entity.BalanceRecord, pricing port.PricingSource) []entity.AssetView {
	views, _ := a.AggregateWithGaps(enabledAssets, records, pricing)
	return views
}

// AggregateWithGaps is Aggregate that also reports every omitted input.
func (a *Aggregator) AggregateWithGaps(enabledAssets []string, records []entity.BalanceRecord, pricing port.PricingSource) ([]entity.AssetView, []entity.DataGap) {
	start := time.Now()
	defer func() { metrics.AggregationDuration.Observe(time.Since(start).Seconds()) }()

	grouped, gaps := a.groupRecords(records)

	views := make([]entity.AssetView, 0, len(enabledAssets))
	seen := make(map[string]struct{}, len(enabledAssets))
	for _, raw := range enabledAssets {
		denom := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := seen[denom]; dup {
			continue
		}
		seen[denom] = struct{}{}

		desc, ok := a.assetDescriptor(denom)
		if !ok {
			a.logger.Debug("Enabled asset has no descriptor, skipping", "denomination", raw)
			gaps = append(gaps, entity.DataGap{Kind: entity.GapUnknownDenomination, Denomination: denom, Detail: "enabled asset has no descriptor"})
			continue
		}
		views = append(views, a.buildView(desc, grouped[denom], pricing))
	}

	// Сначала ненулевые, затем по убыванию фиатной стоимости.
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].HasBalance != views[j].HasBalance {
			return views[i].HasBalance
		}
		return views[i].TotalBalanceFiat.GreaterThan(views[j].TotalBalanceFiat)
	})

	return views, gaps
}

// groupRecords sums records per denomination and network. Records that cannot
// be attributed to a supported asset network are reported as gaps.
func (a *Aggregator) groupRecords(records []entity.BalanceRecord) (map[string]map[string]decimal.Decimal, []entity.DataGap) {
	grouped := make(map[string]map[string]decimal.Decimal)
	var gaps []entity.DataGap

	for _, r := range records {
		denom := strings.ToLower(strings.TrimSpace(r.Denomination))
		network := strings.ToLower(strings.TrimSpace(r.NetworkType))

		desc, ok := a.assetDescriptor(denom)
		if !ok {
			a.logger.Debug("Balance record for unknown denomination", "denomination", r.Denomination, "network", r.NetworkType)
			gaps = append(gaps, entity.DataGap{Kind: entity.GapUnknownDenomination, Denomination: denom, NetworkID: network})
			continue
		}
		if !desc.SupportsNetwork(network) {
			a.logger.Debug("Balance record for unsupported network", "denomination", denom, "network", r.NetworkType)
			gaps = append(gaps, entity.DataGap{Kind: entity.GapUnsupportedNetwork, Denomination: denom, NetworkID: network})
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(r.Value))
		if err != nil || value.IsNegative() {
			detail := fmt.Sprintf("value %q", r.Value)
			if err != nil {
				detail = fmt.Sprintf("value %q: %v", r.Value, err)
			}
			a.logger.Debug("Unparseable balance value", "denomination", denom, "network", network, "value", r.Value)
			gaps = append(gaps, entity.DataGap{Kind: entity.GapUnparseableValue, Denomination: denom, NetworkID: network, Detail: detail})
			continue
		}

		byNetwork, ok := grouped[denom]
		if !ok {
			byNetwork = make(map[string]decimal.Decimal)
			grouped[denom] = byNetwork
		}
		byNetwork[network] = byNetwork[network].Add(value)
	}
	return grouped, gaps
}

func (a *Aggregator) buildView(desc entity.AssetDescriptor, byNetwork map[string]decimal.Decimal, pricing port.PricingSource) entity.AssetView {
	quote := a.safeQuote(pricing, desc.Denomination)
	price := quote.Rate

	view := entity.AssetView{
		Denomination:  desc.Denomination,
		Name:          desc.Name,
		DisplaySymbol: desc.DisplaySymbol,
		Price:         price,
		PriceStale:    quote.Stale(),
		PerNetwork:    make([]entity.NetworkView, 0, len(desc.SupportedNetworks)),
	}

	total := decimal.Zero
	for _, networkID := range desc.SupportedNetworks {
		balance := byNetwork[networkID]
		nv := entity.NetworkView{
			NetworkID:   networkID,
			Name:        networkID,
			Balance:     balance,
			BalanceFiat: balance.Mul(price),
			HasBalance:  balance.IsPositive(),
		}
		if nd, ok := a.catalog.Network(networkID); ok {
			nv.Name = nd.Name
		}
		view.PerNetwork = append(view.PerNetwork, nv)
		total = total.Add(balance)
	}

	view.TotalBalance = total
	view.TotalBalanceFiat = total.Mul(price)
	view.HasBalance = total.IsPositive()
	return view
}

// safeQuote returns a zero quote when the source is missing, has no rate or panics.
func (a *Aggregator) safeQuote(pricing port.PricingSource, denomination string) (quote entity.RateQuote) {
	missing := entity.RateQuote{Rate: decimal.Zero, Origin: entity.RateMissing}
	if pricing == nil {
		return missing
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Pricing source panicked, using zero price", "denomination", denomination, "panic", r)
			quote = missing
		}
	}()
	q := pricing.Quote(denomination, a.fiat)
	if !q.Known() || q.Rate.IsNegative() {
		return missing
	}
	return q
}

func (a *Aggregator) assetDescriptor(denomination string) (entity.AssetDescriptor, bool) {
	if a.catalog == nil || denomination == "" {
		return entity.AssetDescriptor{}, false
	}
	return a.catalog.Asset(denomination)
}

// TotalFiat sums the fiat values of the given views.
func TotalFiat(views []entity.AssetView) decimal.Decimal {
	total := decimal.Zero
	for _, v := range views {
		total = total.Add(v.TotalBalanceFiat)
	}
	return total
}
