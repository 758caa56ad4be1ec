package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// ErrNetworkUnavailable is returned when a session is opened for a network
// the asset is not held on.
var ErrNetworkUnavailable = errors.New("network is not available for asset")

// transferSession implements port.TransferSession on top of a TransferAttempt
// and a FeeTracker.
type transferSession struct {
	id           string
	denomination string
	networkID    string

	attempt *TransferAttempt
	fees    *FeeTracker

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newTransferSession(
	ctx context.Context,
	id string,
	composer port.TransferService,
	estimator port.FeeService,
	view entity.AssetView,
	networkID string,
	debounce time.Duration,
	l port.Logger,
) *transferSession {
	ctx, cancel := context.WithCancel(ctx)
	s := &transferSession{
		id:           id,
		denomination: view.Denomination,
		networkID:    networkID,
		attempt:      NewTransferAttempt(composer, view, networkID),
		fees:         NewFeeTracker(ctx, estimator, debounce, l.With("session", id)),
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	updates := s.fees.Subscribe()
	go s.applyFees(updates)
	s.fees.Select(networkID, view.Denomination)
	return s
}

// applyFees feeds accepted estimates into the attempt. The tracker is read
// again so an estimate superseded after delivery is never applied.
func (s *transferSession) applyFees(updates <-chan entity.FeeEstimate) {
	defer close(s.done)
	for range updates {
		_ = s.attempt.SetFee(s.fees.Current())
	}
}

func (s *transferSession) ID() string { return s.id }

// Edit records the input. Amount-sensitive fees go back to pending until the
// tracker settles the estimate for the new amount.
func (s *transferSession) Edit(recipient string, amount decimal.Decimal) (entity.ValidationResult, error) {
	switch st := s.attempt.State(); st {
	case entity.TransferSubmitting, entity.TransferConfirmed, entity.TransferFailed:
		return entity.ValidationResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st, entity.TransferValidating)
	}

	s.fees.SetAmount(&amount)
	if s.fees.AmountSensitive() {
		_ = s.attempt.SetFee(s.fees.Current())
	}
	return s.attempt.Edit(recipient, amount)
}

func (s *transferSession) RetryFee() {
	s.fees.Retry()
	_ = s.attempt.SetFee(s.fees.Current())
}

func (s *transferSession) Submit(ctx context.Context) (entity.SubmissionResult, error) {
	return s.attempt.Submit(ctx)
}

func (s *transferSession) Resume() error {
	return s.attempt.Resume()
}

func (s *transferSession) Status() entity.TransferSessionStatus {
	recipient, amount := s.attempt.Input()
	status := entity.TransferSessionStatus{
		ID:           s.id,
		Denomination: s.denomination,
		NetworkID:    s.networkID,
		State:        s.attempt.State(),
		Recipient:    recipient,
		Amount:       amount,
		Fee:          s.fees.Current(),
		Validation:   s.attempt.Validation(),
	}
	if res, ok := s.attempt.Result(); ok {
		status.Result = &res
	}
	if err := s.attempt.Err(); err != nil {
		status.Error = err.Error()
	}
	return status
}

// Close stops the fee tracker and waits for the fee pump to exit.
func (s *transferSession) Close() {
	s.closeOnce.Do(func() {
		s.fees.Close()
		s.cancel()
		<-s.done
	})
}

// transferSessionStore implements port.TransferSessionStore.
// Сессии живут в go-cache, истекшие закрываются через OnEvicted.
type transferSessionStore struct {
	ctx       context.Context
	composer  port.TransferService
	estimator port.FeeService
	debounce  time.Duration
	logger    port.Logger

	sessions *cache.Cache
}

// NewTransferSessionStore creates a store whose sessions expire after ttl
// without access. Fee work of all sessions is bound to ctx.
func NewTransferSessionStore(
	ctx context.Context,
	composer port.TransferService,
	estimator port.FeeService,
	ttl, debounce time.Duration,
	l port.Logger,
) port.TransferSessionStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	m := &transferSessionStore{
		ctx:       ctx,
		composer:  composer,
		estimator: estimator,
		debounce:  debounce,
		logger:    l.With("component", "transfer_sessions"),
		sessions:  cache.New(ttl, ttl),
	}
	m.sessions.OnEvicted(func(id string, v any) {
		if s, ok := v.(*transferSession); ok {
			s.Close()
		}
		metrics.TransferSessionsOpen.Set(float64(m.sessions.ItemCount()))
		m.logger.Debug("Transfer session closed", "session", id)
	})
	return m
}

func (m *transferSessionStore) Open(view entity.AssetView, networkID string) (port.TransferSession, error) {
	if m.estimator == nil {
		return nil, errors.New("fee estimation is not configured")
	}
	networkID = strings.ToLower(strings.TrimSpace(networkID))
	if _, ok := view.Network(networkID); !ok {
		return nil, fmt.Errorf("%w: %s on %q", ErrNetworkUnavailable, view.Denomination, networkID)
	}

	s := newTransferSession(m.ctx, uuid.NewString(), m.composer, m.estimator, view, networkID, m.debounce, m.logger)
	m.sessions.SetDefault(s.id, s)
	metrics.TransferSessionsOpen.Set(float64(m.sessions.ItemCount()))
	m.logger.Info("Transfer session opened", "session", s.id, "denomination", view.Denomination, "network", networkID)
	return s, nil
}

// Get returns an open session and extends its expiry.
func (m *transferSessionStore) Get(id string) (port.TransferSession, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := v.(*transferSession)
	if !ok {
		return nil, false
	}
	m.sessions.SetDefault(id, s)
	return s, true
}

func (m *transferSessionStore) Close(id string) bool {
	if _, ok := m.sessions.Get(id); !ok {
		return false
	}
	m.sessions.Delete(id)
	return true
}

func (m *transferSessionStore) CloseAll() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
