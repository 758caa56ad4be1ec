package walletcore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHTTPClient(t *testing.T, mux *http.ServeMux) *httpClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 2*time.Second, zap.NewNop()).(*httpClient)
}

func TestHTTPClientReads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/balances", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"balances":[{"denomination":"usdt","networkType":"tron","value":"50.5"}]}`))
	})
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transactions":[{"from":"a","to":"b","amount":"1","denomination":"btc","network":"segwit","timestamp":1700000000000,"transactionHash":"h1"}]}`))
	})
	mux.HandleFunc("/addresses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := newTestHTTPClient(t, mux)
	ctx := context.Background()

	balances, err := c.GetBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.BalanceRecord{{Denomination: "usdt", NetworkType: "tron", Value: "50.5"}}, balances)

	history, err := c.GetTransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1700000000000), history[0].Timestamp)

	addresses, err := c.GetAddresses(ctx)
	require.NoError(t, err)
	assert.NotNil(t, addresses)
	assert.Empty(t, addresses)
}

func TestHTTPClientSendTransfer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		raw, _ := io.ReadAll(r.Body)
		var got transferRequest
		if assert.NoError(t, json.Unmarshal(raw, &got)) {
			assert.Equal(t, "intent-1", got.IntentID)
			assert.Equal(t, "tron", got.Network)
			assert.Equal(t, 2, got.AccountIndex)
			assert.Equal(t, "12.5", got.Amount)
			assert.Equal(t, "usdt", got.Denomination)
		}
		_, _ = w.Write([]byte(`{"transactionHash":"0xfeed","submittedAt":"2026-01-02T03:04:05Z"}`))
	})
	c := newTestHTTPClient(t, mux)

	res, err := c.SendTransfer(context.Background(), entity.TransferIntent{
		ID: "intent-1", NetworkID: "tron", Denomination: "usdt",
		Amount: decimal.RequireFromString("12.5"), RecipientAddress: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", AccountIndex: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "intent-1", res.IntentID)
	assert.Equal(t, "0xfeed", res.TransactionHash)
	assert.Equal(t, 2026, res.SubmittedAt.Year())
}

func TestHTTPClientErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"insufficient energy"}`))
	})
	mux.HandleFunc("/balances", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	mux.HandleFunc("/transfers/quote", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var got quoteRequest
		_ = json.Unmarshal(raw, &got)
		assert.Equal(t, "0.5", got.Amount)
		_, _ = w.Write([]byte(`{"fee":"0.00002","feeDenomination":"BTC"}`))
	})
	c := newTestHTTPClient(t, mux)
	ctx := context.Background()

	_, err := c.SendTransfer(ctx, entity.TransferIntent{ID: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "insufficient energy")

	_, err = c.GetBalances(ctx)
	assert.Error(t, err)

	amount := decimal.RequireFromString("0.5")
	fee, err := c.QuoteTransfer(ctx, entity.FeeRequest{NetworkID: "segwit", Denomination: "btc", Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "btc", fee.Denomination)
	assert.True(t, decimal.RequireFromString("0.00002").Equal(fee.Amount))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.GetTransactionHistory(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}

const fixture = `{
  "balances": [{"denomination": "btc", "networkType": "segwit", "value": "0.002"}],
  "transactions": [{"from": "x", "to": "y", "amount": "1", "denomination": "usdt", "network": "tron", "timestamp": 1, "transactionHash": "t"}],
  "addresses": {"Segwit": "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
  "fees": {"segwit": {"fee": "0.00001", "feeDenomination": "btc"}}
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSnapshotClient(t *testing.T) {
	path := writeFixture(t, fixture)
	c := NewFileSnapshotClient(path, logger.Nop())
	ctx := context.Background()

	balances, err := c.GetBalances(ctx)
	require.NoError(t, err)
	assert.Len(t, balances, 1)

	history, err := c.GetTransactionHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	addresses, err := c.GetAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", addresses["segwit"])

	fee, err := c.QuoteTransfer(ctx, entity.FeeRequest{NetworkID: "SEGWIT", Denomination: "btc"})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.00001").Equal(fee.Amount))

	_, err = c.QuoteTransfer(ctx, entity.FeeRequest{NetworkID: "tron"})
	assert.Error(t, err)

	_, err = c.SendTransfer(ctx, entity.TransferIntent{ID: "i"})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestFileSnapshotClientReloadsBalances(t *testing.T) {
	path := writeFixture(t, `{"balances": []}`)
	c := NewFileSnapshotClient(path, logger.Nop())

	balances, err := c.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Empty(t, balances)

	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	balances, err = c.GetBalances(context.Background())
	require.NoError(t, err)
	assert.Len(t, balances, 1)
}

func TestFileSnapshotClientMissingFile(t *testing.T) {
	c := NewFileSnapshotClient(filepath.Join(t.TempDir(), "missing.json"), logger.Nop())
	_, err := c.GetBalances(context.Background())
	assert.Error(t, err)
}
