package service

import (
	"context"
	"sync"
	"testing"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/infrastructure/catalog"
	"wallet_engine/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func testCatalog(t *testing.T) port.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.BuiltinNetworks(), catalog.BuiltinAssets(), logger.Nop())
	require.NoError(t, err)
	return c
}

// mapPricing is a fixed PricingSource keyed by lower-case denomination.
type mapPricing map[string]decimal.Decimal

func (m mapPricing) Rate(denomination, _ string) (decimal.Decimal, bool) {
	r, ok := m[denomination]
	return r, ok
}

func (m mapPricing) Quote(denomination, fiat string) entity.RateQuote {
	if r, ok := m.Rate(denomination, fiat); ok {
		return entity.RateQuote{Rate: r, Origin: entity.RateFresh}
	}
	return entity.RateQuote{Origin: entity.RateMissing}
}

func (m mapPricing) Convert(amount decimal.Decimal, denomination, fiat string) decimal.Decimal {
	r, ok := m.Rate(denomination, fiat)
	if !ok {
		return decimal.Zero
	}
	return amount.Mul(r)
}

func (m mapPricing) ConvertToAsset(fiatAmount decimal.Decimal, denomination, fiat string) (decimal.Decimal, bool) {
	r, ok := m.Rate(denomination, fiat)
	if !ok || r.IsZero() {
		return decimal.Zero, false
	}
	return fiatAmount.Div(r), true
}

func (m mapPricing) Initialized() bool { return true }

type panickingPricing struct{ mapPricing }

func (panickingPricing) Rate(string, string) (decimal.Decimal, bool) {
	panic("rate feed exploded")
}

func (panickingPricing) Quote(string, string) entity.RateQuote {
	panic("rate feed exploded")
}

type fakeRateFeed struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
	err   error
	calls [][]string
}

func (f *fakeRateFeed) Name() string { return "fake" }

func (f *fakeRateFeed) FetchRates(_ context.Context, ids []string, _ string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]decimal.Decimal)
	for _, id := range ids {
		if r, ok := f.rates[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeRateFeed) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRateFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeWalletCore is an in-memory port.WalletCore.
type fakeWalletCore struct {
	mu         sync.Mutex
	balances   []entity.BalanceRecord
	history    []entity.TransactionRecord
	addresses  map[string]string
	balanceErr error
	sendErr    error
	quote      entity.Fee
	quoteErr   error
	sent       []entity.TransferIntent
}

func (f *fakeWalletCore) GetBalances(context.Context) ([]entity.BalanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return append([]entity.BalanceRecord(nil), f.balances...), nil
}

func (f *fakeWalletCore) GetTransactionHistory(context.Context) ([]entity.TransactionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.TransactionRecord(nil), f.history...), nil
}

func (f *fakeWalletCore) GetAddresses(context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addresses, nil
}

func (f *fakeWalletCore) SendTransfer(_ context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, intent)
	if f.sendErr != nil {
		return entity.SubmissionResult{}, f.sendErr
	}
	return entity.SubmissionResult{IntentID: intent.ID, TransactionHash: "0xabc"}, nil
}

func (f *fakeWalletCore) QuoteTransfer(context.Context, entity.FeeRequest) (entity.Fee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote, f.quoteErr
}

func (f *fakeWalletCore) setBalances(b []entity.BalanceRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances = b
}

func (f *fakeWalletCore) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
