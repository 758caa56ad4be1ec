package port

import (
	"context"

	"wallet_engine/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// BalanceRefresher replaces the shared balance snapshot with fresh data.
type BalanceRefresher interface {
	// RefreshBalances keeps the previous snapshot when the refresh fails.
	RefreshBalances(ctx context.Context) (entity.Snapshot, error)
}

// WalletService owns the shared balance snapshot and derives portfolios from it.
type WalletService interface {
	BalanceRefresher
	Snapshot() entity.Snapshot
	// Portfolio aggregates the current snapshot in the configured fiat currency.
	Portfolio() entity.Portfolio
	// Asset returns the view of a single enabled asset from the current snapshot.
	Asset(denomination string) (entity.AssetView, bool)
	SetEnabledAssets(denominations []string) entity.Snapshot
}

// TransferService validates, bounds and submits transfers.
type TransferService interface {
	Validate(recipient string, amount decimal.Decimal, view entity.AssetView, networkID string, fee entity.FeeEstimate) entity.ValidationResult
	ComposeMaxAmount(view entity.AssetView, networkID string, fee entity.FeeEstimate) entity.MaxAmount
	// BuildIntent validates and, when valid, returns a fresh intent with a new id.
	BuildIntent(recipient string, amount decimal.Decimal, view entity.AssetView, networkID string, fee entity.FeeEstimate) (entity.TransferIntent, entity.ValidationResult)
	// Submit hands the intent to the wallet core. It never retries.
	Submit(ctx context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error)
}

// TransferSession is one open transfer screen. Its fee estimate follows the
// entered amount and every accepted estimate re-validates the transfer.
type TransferSession interface {
	ID() string
	Edit(recipient string, amount decimal.Decimal) (entity.ValidationResult, error)
	RetryFee()
	// Submit sends the transfer once the session is ready. It never retries.
	Submit(ctx context.Context) (entity.SubmissionResult, error)
	// Resume returns a failed session to ready with its input intact.
	Resume() error
	Status() entity.TransferSessionStatus
}

// TransferSessionStore keeps open transfer sessions. Idle sessions expire.
type TransferSessionStore interface {
	Open(view entity.AssetView, networkID string) (TransferSession, error)
	Get(id string) (TransferSession, bool)
	Close(id string) bool
	CloseAll()
}

// HistoryService lists the wallet's past transfers.
type HistoryService interface {
	List(ctx context.Context) ([]entity.TransactionView, error)
}
