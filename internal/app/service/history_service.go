package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/format"

	"github.com/shopspring/decimal"
)

// historyServiceImpl implements port.HistoryService.
type historyServiceImpl struct {
	core    port.WalletCore
	catalog port.Catalog
	pricing port.PricingSource
	fiat    string
	logger  port.Logger
}

// NewHistoryService creates a new instance of historyServiceImpl.
func NewHistoryService(core port.WalletCore, catalog port.Catalog, pricing port.PricingSource, fiat string, l port.Logger) port.HistoryService {
	return &historyServiceImpl{
		core:    core,
		catalog: catalog,
		pricing: pricing,
		fiat:    strings.ToLower(fiat),
		logger:  l.With("component", "history"),
	}
}

// List returns the wallet's transfers, newest first. A transfer is "sent"
// when its sender is one of the wallet's own addresses.
func (s *historyServiceImpl) List(ctx context.Context) ([]entity.TransactionView, error) {
	records, err := s.core.GetTransactionHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}

	own := make(map[string]struct{})
	addresses, err := s.core.GetAddresses(ctx)
	if err != nil {
		// без адресов все записи считаются входящими
		s.logger.Warn("Failed to load own addresses", "error", err)
	}
	for _, addr := range addresses {
		if addr != "" {
			own[strings.ToLower(addr)] = struct{}{}
		}
	}

	views := make([]entity.TransactionView, 0, len(records))
	for i, r := range records {
		amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
		if err != nil {
			s.logger.Debug("Skipping transaction with unparseable amount", "hash", r.TransactionHash, "amount", r.Amount)
			continue
		}
		denom := strings.ToLower(r.Denomination)
		network := strings.ToLower(r.Network)

		v := entity.TransactionView{
			ID:           r.TransactionHash + "-" + strconv.Itoa(i),
			Direction:    entity.DirectionReceived,
			Amount:       amount,
			AmountFiat:   s.convert(amount, denom),
			Denomination: denom,
			Name:         format.DisplaySymbol(denom),
			Counterparty: r.From,
			Network:      network,
			NetworkName:  network,
			Timestamp:    r.Timestamp,
		}
		if _, sent := own[strings.ToLower(r.From)]; sent {
			v.Direction = entity.DirectionSent
			v.Counterparty = r.To
		}
		if s.catalog != nil {
			if a, ok := s.catalog.Asset(denom); ok {
				v.Name = a.Name
			}
			if n, ok := s.catalog.Network(network); ok {
				v.NetworkName = n.Name
			}
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp > views[j].Timestamp
	})
	return views, nil
}

func (s *historyServiceImpl) convert(amount decimal.Decimal, denomination string) (fiat decimal.Decimal) {
	if s.pricing == nil {
		return decimal.Zero
	}
	defer func() {
		if r := recover(); r != nil {
			fiat = decimal.Zero
		}
	}()
	return s.pricing.Convert(amount, denomination, s.fiat)
}
