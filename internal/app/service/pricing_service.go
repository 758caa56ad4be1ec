package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/metrics"
	"wallet_engine/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PricingOptions configures the pricing service.
type PricingOptions struct {
	FiatCurrencies   []string
	CacheTTL         time.Duration
	MaxIDsPerRequest int
	MaxConcurrent    int
	// StaticRates are pegs used when neither a fresh nor a last-known rate exists:
	// fiat -> denomination -> rate.
	StaticRates map[string]map[string]decimal.Decimal
}

// pricingServiceImpl implements port.PricingService.
// Разрешение курса: свежий кеш -> последний известный -> статический -> 0.
type pricingServiceImpl struct {
	feed    port.RateFeed
	catalog port.Catalog
	logger  port.Logger
	opts    PricingOptions

	fresh *cache.Cache // key: fiat:denomination, TTL-bound

	mu        sync.RWMutex
	lastKnown map[string]decimal.Decimal
	static    map[string]decimal.Decimal

	initialized atomic.Bool
}

// NewPricingService creates a new instance of pricingServiceImpl.
func NewPricingService(feed port.RateFeed, catalog port.Catalog, l port.Logger, opts PricingOptions) port.PricingService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	s := &pricingServiceImpl{
		feed:      feed,
		catalog:   catalog,
		logger:    l.With("component", "pricing"),
		opts:      opts,
		fresh:     cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		lastKnown: make(map[string]decimal.Decimal),
		static:    make(map[string]decimal.Decimal),
	}
	for fiat, byDenom := range opts.StaticRates {
		for denom, r := range byDenom {
			s.static[rateKey(denom, fiat)] = r
		}
	}
	s.logger.Info("PricingService успешно инициализирован.", "feed", feedName(feed), "fiats", opts.FiatCurrencies, "staticRates", len(s.static))
	return s
}

func rateKey(denomination, fiat string) string {
	return strings.ToLower(fiat) + ":" + strings.ToLower(denomination)
}

func feedName(feed port.RateFeed) string {
	if feed == nil {
		return "none"
	}
	return feed.Name()
}

// Rate implements port.PricingSource. It never performs I/O.
func (s *pricingServiceImpl) Rate(denomination, fiat string) (decimal.Decimal, bool) {
	q := s.Quote(denomination, fiat)
	return q.Rate, q.Known()
}

// Quote implements port.PricingSource. Rates older than CacheTTL are no
// longer in the fresh cache and come back as last known.
func (s *pricingServiceImpl) Quote(denomination, fiat string) entity.RateQuote {
	key := rateKey(denomination, fiat)

	if v, ok := s.fresh.Get(key); ok {
		if r, ok := v.(decimal.Decimal); ok {
			return entity.RateQuote{Rate: r, Origin: entity.RateFresh}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.lastKnown[key]; ok {
		return entity.RateQuote{Rate: r, Origin: entity.RateLastKnown}
	}
	if r, ok := s.static[key]; ok {
		return entity.RateQuote{Rate: r, Origin: entity.RateStatic}
	}
	return entity.RateQuote{Rate: decimal.Zero, Origin: entity.RateMissing}
}

// Convert implements port.PricingSource.
func (s *pricingServiceImpl) Convert(amount decimal.Decimal, denomination, fiat string) decimal.Decimal {
	r, ok := s.Rate(denomination, fiat)
	if !ok {
		return decimal.Zero
	}
	return amount.Mul(r)
}

// ConvertToAsset implements port.PricingSource.
func (s *pricingServiceImpl) ConvertToAsset(fiatAmount decimal.Decimal, denomination, fiat string) (decimal.Decimal, bool) {
	r, ok := s.Rate(denomination, fiat)
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return fiatAmount.Div(r), true
}

// Initialized reports whether at least one refresh has completed successfully.
func (s *pricingServiceImpl) Initialized() bool {
	return s.initialized.Load()
}

// Refresh implements port.PricingService.
func (s *pricingServiceImpl) Refresh(ctx context.Context) error {
	if s.feed == nil {
		s.initialized.Store(true)
		return nil
	}

	// feed id -> denominations priced by it
	byFeedID := make(map[string][]string)
	var feedIDs []string
	for _, a := range s.catalog.Assets() {
		if a.PriceFeedID == "" {
			continue
		}
		id := strings.ToLower(a.PriceFeedID)
		if _, ok := byFeedID[id]; !ok {
			feedIDs = append(feedIDs, id)
		}
		byFeedID[id] = append(byFeedID[id], a.Denomination)
	}
	if len(feedIDs) == 0 {
		s.logger.Warn("No assets with a price feed id, nothing to refresh")
		s.initialized.Store(true)
		return nil
	}

	s.logger.Debug("Refreshing rates", "feed", s.feed.Name(), "ids", len(feedIDs), "fiats", s.opts.FiatCurrencies)

	var (
		errMu   sync.Mutex
		errs    []error
		updated atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrent)

	for _, fiat := range s.opts.FiatCurrencies {
		fiat := fiat
		for _, batch := range utils.BatchStrings(feedIDs, s.opts.MaxIDsPerRequest) {
			batch := batch
			g.Go(func() error {
				rates, err := s.feed.FetchRates(gctx, batch, fiat)
				if err != nil {
					// Ошибки фида не прерывают остальные батчи.
					s.logger.Error("Failed to fetch rates", "feed", s.feed.Name(), "fiat", fiat, "ids", batch, "error", err)
					metrics.PriceRefreshes.WithLabelValues(s.feed.Name(), metrics.StatusError).Inc()
					errMu.Lock()
					errs = append(errs, fmt.Errorf("fetch %s rates: %w", fiat, err))
					errMu.Unlock()
					return nil
				}
				metrics.PriceRefreshes.WithLabelValues(s.feed.Name(), metrics.StatusOK).Inc()
				updated.Add(int64(s.store(rates, byFeedID, fiat)))
				return nil
			})
		}
	}
	_ = g.Wait()

	metrics.PricesCached.Set(float64(s.fresh.ItemCount()))

	if len(errs) > 0 && updated.Load() == 0 {
		return errors.Join(errs...)
	}
	s.initialized.Store(true)
	s.logger.Info("Finished refreshing rates", "updated", updated.Load(), "failedBatches", len(errs))
	return errors.Join(errs...)
}

func (s *pricingServiceImpl) store(rates map[string]decimal.Decimal, byFeedID map[string][]string, fiat string) int {
	n := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range rates {
		if r.IsNegative() {
			s.logger.Warn("Ignoring negative rate", "id", id, "fiat", fiat, "rate", r.String())
			continue
		}
		for _, denom := range byFeedID[strings.ToLower(id)] {
			key := rateKey(denom, fiat)
			s.fresh.SetDefault(key, r)
			s.lastKnown[key] = r
			n++
		}
	}
	return n
}

// Run refreshes rates immediately and then every interval until ctx is done.
func (s *pricingServiceImpl) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Rate refresh finished with errors, serving previous rates", "error", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Pricing refresh loop stopped")
			return
		case <-ticker.C:
		}
	}
}
