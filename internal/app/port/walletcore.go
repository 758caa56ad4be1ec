package port

import (
	"context"

	"wallet_engine/internal/domain/entity"
)

// WalletCore is the external collaborator that owns keys, signing and
// broadcast. Seed and wallet lifecycle are not part of this contract.
type WalletCore interface {
	// GetBalances returns the current balance snapshot across all tracked networks.
	GetBalances(ctx context.Context) ([]entity.BalanceRecord, error)
	GetTransactionHistory(ctx context.Context) ([]entity.TransactionRecord, error)
	// GetAddresses returns the wallet's own address per network id.
	GetAddresses(ctx context.Context) (map[string]string, error)
	// SendTransfer signs and broadcasts the intent.
	SendTransfer(ctx context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error)
	// QuoteTransfer asks the wallet core for a fee quote.
	QuoteTransfer(ctx context.Context, req entity.FeeRequest) (entity.Fee, error)
}
