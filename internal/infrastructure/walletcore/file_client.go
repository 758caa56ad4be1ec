package walletcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/utils"
)

const defaultSnapshotPath = "data/wallet_snapshot.json"

// ErrReadOnly is returned by the file client for operations that need signing.
var ErrReadOnly = errors.New("wallet core snapshot is read-only")

// FileSnapshotClient implements port.WalletCore by reading a JSON fixture.
// The file is re-read on every balance refresh so edits show up without a restart.
type FileSnapshotClient struct {
	filePath string
	logger   port.Logger

	mu   sync.RWMutex
	last *Snapshot
}

// NewFileSnapshotClient creates a new FileSnapshotClient.
func NewFileSnapshotClient(filePath string, l port.Logger) *FileSnapshotClient {
	if filePath == "" {
		filePath = defaultSnapshotPath
	}
	return &FileSnapshotClient{
		filePath: filePath,
		logger:   l.With("component", "walletcore_file"),
	}
}

func (c *FileSnapshotClient) load() (*Snapshot, error) {
	snap, err := utils.LoadJSON[Snapshot](c.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet snapshot: %w", err)
	}
	c.mu.Lock()
	c.last = &snap
	c.mu.Unlock()
	c.logger.Debug("Wallet snapshot loaded", "path", c.filePath, "balances", len(snap.Balances), "transactions", len(snap.Transactions))
	return &snap, nil
}

// cached returns the last loaded snapshot, loading it on first use.
func (c *FileSnapshotClient) cached() (*Snapshot, error) {
	c.mu.RLock()
	snap := c.last
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return c.load()
}

func (c *FileSnapshotClient) GetBalances(ctx context.Context) ([]entity.BalanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := c.load()
	if err != nil {
		return nil, err
	}
	return append([]entity.BalanceRecord(nil), snap.Balances...), nil
}

func (c *FileSnapshotClient) GetTransactionHistory(ctx context.Context) ([]entity.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := c.cached()
	if err != nil {
		return nil, err
	}
	return append([]entity.TransactionRecord(nil), snap.Transactions...), nil
}

func (c *FileSnapshotClient) GetAddresses(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := c.cached()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(snap.Addresses))
	for network, addr := range snap.Addresses {
		out[strings.ToLower(network)] = addr
	}
	return out, nil
}

// SendTransfer always fails: a fixture cannot sign.
func (c *FileSnapshotClient) SendTransfer(_ context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error) {
	c.logger.Warn("Refusing to send transfer from a read-only snapshot", "intent", intent.ID)
	return entity.SubmissionResult{}, ErrReadOnly
}

// QuoteTransfer serves the fixed fee configured for the network in the fixture.
func (c *FileSnapshotClient) QuoteTransfer(ctx context.Context, req entity.FeeRequest) (entity.Fee, error) {
	if err := ctx.Err(); err != nil {
		return entity.Fee{}, err
	}
	snap, err := c.cached()
	if err != nil {
		return entity.Fee{}, err
	}
	for network, fee := range snap.Fees {
		if strings.EqualFold(network, req.NetworkID) {
			return entity.Fee{Amount: fee.Fee, Denomination: strings.ToLower(fee.FeeDenomination)}, nil
		}
	}
	return entity.Fee{}, fmt.Errorf("no fee quote for network %s in snapshot", req.NetworkID)
}

var _ port.WalletCore = (*FileSnapshotClient)(nil)
