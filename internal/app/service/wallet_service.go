package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/metrics"
	"wallet_engine/internal/pkg/utils"
)

// walletServiceImpl implements port.WalletService.
// Снапшот неизменяем и заменяется целиком; производные представления
// всегда пересчитываются из одного снапшота.
type walletServiceImpl struct {
	core       port.WalletCore
	aggregator *Aggregator
	pricing    port.PricingSource
	logger     port.Logger
	now        func() time.Time

	snapshot atomic.Pointer[entity.Snapshot]
	writeMu  sync.Mutex // serializes snapshot replacement
}

// NewWalletService creates a new instance of walletServiceImpl with an empty
// snapshot and the given enabled assets.
func NewWalletService(
	core port.WalletCore,
	aggregator *Aggregator,
	pricing port.PricingSource,
	enabledAssets []string,
	l port.Logger,
) port.WalletService {
	s := &walletServiceImpl{
		core:       core,
		aggregator: aggregator,
		pricing:    pricing,
		logger:     l.With("component", "wallet"),
		now:        time.Now,
	}
	s.snapshot.Store(&entity.Snapshot{
		Balances:      []entity.BalanceRecord{},
		EnabledAssets: utils.UniqueFold(enabledAssets),
	})
	return s
}

func (s *walletServiceImpl) Snapshot() entity.Snapshot {
	return *s.snapshot.Load()
}

// RefreshBalances fetches balances from the wallet core and replaces the snapshot.
func (s *walletServiceImpl) RefreshBalances(ctx context.Context) (entity.Snapshot, error) {
	records, err := s.core.GetBalances(ctx)
	if err != nil {
		metrics.BalanceRefreshes.WithLabelValues(metrics.StatusError).Inc()
		s.logger.Error("Failed to refresh balances, keeping previous snapshot", "error", err)
		return s.Snapshot(), fmt.Errorf("refresh balances: %w", err)
	}
	metrics.BalanceRefreshes.WithLabelValues(metrics.StatusOK).Inc()

	next := s.replace(func(prev *entity.Snapshot) entity.Snapshot {
		return entity.Snapshot{
			Balances:      append([]entity.BalanceRecord(nil), records...),
			EnabledAssets: prev.EnabledAssets,
			RefreshedAt:   s.now(),
		}
	})
	s.logger.Info("Balances refreshed", "records", len(records), "version", next.Version)
	return next, nil
}

// SetEnabledAssets replaces the enabled-asset list. Duplicates are dropped.
func (s *walletServiceImpl) SetEnabledAssets(denominations []string) entity.Snapshot {
	enabled := utils.UniqueFold(denominations)
	next := s.replace(func(prev *entity.Snapshot) entity.Snapshot {
		return entity.Snapshot{
			Balances:      prev.Balances,
			EnabledAssets: enabled,
			RefreshedAt:   prev.RefreshedAt,
		}
	})
	s.logger.Info("Enabled assets updated", "assets", enabled, "version", next.Version)
	return next
}

func (s *walletServiceImpl) replace(build func(prev *entity.Snapshot) entity.Snapshot) entity.Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.snapshot.Load()
	next := build(prev)
	next.Version = prev.Version + 1
	s.snapshot.Store(&next)
	return next
}

// Portfolio aggregates the current snapshot. Nothing derived is cached.
func (s *walletServiceImpl) Portfolio() entity.Portfolio {
	snap := s.snapshot.Load()
	views, gaps := s.aggregator.AggregateWithGaps(snap.EnabledAssets, snap.Balances, s.pricing)
	return entity.Portfolio{
		Fiat:      s.aggregator.Fiat(),
		Assets:    views,
		TotalFiat: TotalFiat(views),
		Gaps:      gaps,
		Version:   snap.Version,
	}
}

// Asset returns the view of one enabled asset.
func (s *walletServiceImpl) Asset(denomination string) (entity.AssetView, bool) {
	denomination = strings.ToLower(strings.TrimSpace(denomination))
	snap := s.snapshot.Load()

	enabled := false
	for _, d := range snap.EnabledAssets {
		if d == denomination {
			enabled = true
			break
		}
	}
	if !enabled {
		return entity.AssetView{}, false
	}

	views := s.aggregator.Aggregate([]string{denomination}, snap.Balances, s.pricing)
	if len(views) == 0 {
		return entity.AssetView{}, false
	}
	return views[0], true
}
