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
	"wallet_engine/internal/pkg/format"
	"wallet_engine/internal/pkg/metrics"
	"wallet_engine/internal/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransition is returned when a transfer attempt is asked to move
// to a state it cannot reach from its current one.
var ErrInvalidTransition = errors.New("invalid transfer state transition")

// transferComposerImpl implements port.TransferService.
type transferComposerImpl struct {
	catalog      port.Catalog
	validator    port.AddressValidator
	core         port.WalletCore
	refresher    port.BalanceRefresher
	accountIndex int
	logger       port.Logger
	now          func() time.Time
}

// NewTransferComposer creates a transfer composer. refresher may be nil, in
// which case balances are not refreshed after a successful submission.
func NewTransferComposer(
	catalog port.Catalog,
	validator port.AddressValidator,
	core port.WalletCore,
	refresher port.BalanceRefresher,
	accountIndex int,
	l port.Logger,
) port.TransferService {
	return &transferComposerImpl{
		catalog:      catalog,
		validator:    validator,
		core:         core,
		refresher:    refresher,
		accountIndex: accountIndex,
		logger:       l.With("component", "transfer"),
		now:          time.Now,
	}
}

// Validate checks a transfer against the balance held on the selected network
// only. A fee in the transferred denomination must fit next to the amount; a
// fee in another denomination is informational.
func (c *transferComposerImpl) Validate(recipient string, amount decimal.Decimal, view entity.AssetView, networkID string, fee entity.FeeEstimate) entity.ValidationResult {
	var errs []entity.ValidationError
	add := func(code entity.ValidationCode, msg string) {
		errs = append(errs, entity.ValidationError{Code: code, Message: msg})
	}

	recipient = strings.TrimSpace(recipient)
	networkID = strings.ToLower(strings.TrimSpace(networkID))

	network, known := c.network(networkID)
	nv, supported := view.Network(networkID)
	if !known || !supported {
		add(entity.CodeUnknownNetwork, fmt.Sprintf("network %q is not available for %s", networkID, format.DisplaySymbol(view.Denomination)))
	}

	if recipient == "" {
		add(entity.CodeEmptyRecipient, "recipient address is required")
	} else if known && supported && c.validator != nil {
		if err := c.validator.ValidateAddress(network, recipient); err != nil {
			add(entity.CodeInvalidAddress, fmt.Sprintf("invalid %s address: %v", network.Name, err))
		}
	}

	if !amount.IsPositive() {
		add(entity.CodeNonPositiveAmount, "amount must be greater than zero")
	} else if supported {
		if decimals, ok := c.assetDecimals(view.Denomination); ok {
			if _, err := utils.ParseUnits(amount, decimals); err != nil {
				add(entity.CodeAmountPrecision, fmt.Sprintf("%s supports at most %d decimal places", format.DisplaySymbol(view.Denomination), decimals))
			}
		}
		required := amount
		if f, ok := fee.FeeIn(view.Denomination); ok {
			required = required.Add(f)
		}
		if required.GreaterThan(nv.Balance) {
			add(entity.CodeInsufficientBalance, fmt.Sprintf("insufficient balance on %s: available %s",
				nv.Name, format.TokenAmount(nv.Balance, view.Denomination)))
		}
	}

	return entity.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ComposeMaxAmount deducts the fee only when it is known and expressed in the
// transferred denomination.
func (c *transferComposerImpl) ComposeMaxAmount(view entity.AssetView, networkID string, fee entity.FeeEstimate) entity.MaxAmount {
	nv, ok := view.Network(strings.ToLower(strings.TrimSpace(networkID)))
	if !ok {
		return entity.MaxAmount{Amount: decimal.Zero}
	}
	f, sameDenom := fee.FeeIn(view.Denomination)
	if !sameDenom {
		return entity.MaxAmount{Amount: nv.Balance}
	}
	sendable := nv.Balance.Sub(f)
	if sendable.IsNegative() {
		sendable = decimal.Zero
	}
	return entity.MaxAmount{Amount: sendable, FeeDeducted: true}
}

func (c *transferComposerImpl) BuildIntent(recipient string, amount decimal.Decimal, view entity.AssetView, networkID string, fee entity.FeeEstimate) (entity.TransferIntent, entity.ValidationResult) {
	result := c.Validate(recipient, amount, view, networkID, fee)
	if !result.Valid {
		return entity.TransferIntent{}, result
	}
	return entity.TransferIntent{
		ID:               uuid.NewString(),
		NetworkID:        strings.ToLower(strings.TrimSpace(networkID)),
		Denomination:     view.Denomination,
		Amount:           amount,
		RecipientAddress: strings.TrimSpace(recipient),
		AccountIndex:     c.accountIndex,
		CreatedAt:        c.now(),
	}, result
}

// Submit hands the intent to the wallet core. Balances are refreshed after a
// successful broadcast; a failed refresh does not fail the submission.
func (c *transferComposerImpl) Submit(ctx context.Context, intent entity.TransferIntent) (entity.SubmissionResult, error) {
	if c.core == nil {
		return entity.SubmissionResult{}, errors.New("wallet core is not configured")
	}
	c.logger.Info("Submitting transfer",
		"intent", intent.ID, "network", intent.NetworkID, "denomination", intent.Denomination,
		"amount", intent.Amount.String(), "recipient", format.ShortAddress(intent.RecipientAddress))

	res, err := c.core.SendTransfer(ctx, intent)
	if err != nil {
		metrics.TransferSubmissions.WithLabelValues(intent.NetworkID, metrics.StatusError).Inc()
		c.logger.Error("Transfer submission failed", "intent", intent.ID, "network", intent.NetworkID, "error", err)
		return entity.SubmissionResult{}, fmt.Errorf("submit transfer %s: %w", intent.ID, err)
	}
	metrics.TransferSubmissions.WithLabelValues(intent.NetworkID, metrics.StatusOK).Inc()

	if res.IntentID == "" {
		res.IntentID = intent.ID
	}
	if res.SubmittedAt.IsZero() {
		res.SubmittedAt = c.now()
	}
	c.logger.Info("Transfer submitted", "intent", intent.ID, "tx", res.TransactionHash)

	if c.refresher != nil {
		if _, err := c.refresher.RefreshBalances(ctx); err != nil {
			c.logger.Warn("Balance refresh after transfer failed", "intent", intent.ID, "error", err)
		}
	}
	return res, nil
}

// assetDecimals reports the on-chain precision of an asset when the catalog declares one.
func (c *transferComposerImpl) assetDecimals(denomination string) (int32, bool) {
	if c.catalog == nil {
		return 0, false
	}
	a, ok := c.catalog.Asset(denomination)
	if !ok || a.Decimals <= 0 {
		return 0, false
	}
	return a.Decimals, true
}

func (c *transferComposerImpl) network(id string) (entity.NetworkDescriptor, bool) {
	if c.catalog == nil || id == "" {
		return entity.NetworkDescriptor{}, false
	}
	return c.catalog.Network(id)
}

var transferTransitions = map[entity.TransferState][]entity.TransferState{
	entity.TransferIdle:       {entity.TransferValidating},
	entity.TransferValidating: {entity.TransferInvalid, entity.TransferEstimating},
	entity.TransferInvalid:    {entity.TransferValidating},
	entity.TransferEstimating: {entity.TransferReady, entity.TransferValidating},
	entity.TransferReady:      {entity.TransferSubmitting, entity.TransferValidating},
	entity.TransferSubmitting: {entity.TransferConfirmed, entity.TransferFailed},
	entity.TransferFailed:     {entity.TransferReady},
}

// CanTransition reports whether a transfer attempt may move from one state to another.
func CanTransition(from, to entity.TransferState) bool {
	for _, s := range transferTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransferAttempt drives a single transfer through validation, fee
// estimation and submission. Entered data survives a failed submission.
type TransferAttempt struct {
	composer port.TransferService

	mu         sync.Mutex
	state      entity.TransferState
	view       entity.AssetView
	networkID  string
	recipient  string
	amount     decimal.Decimal
	fee        entity.FeeEstimate
	validation entity.ValidationResult
	result     *entity.SubmissionResult
	lastErr    error
}

// NewTransferAttempt starts an idle attempt for an asset on a network.
func NewTransferAttempt(composer port.TransferService, view entity.AssetView, networkID string) *TransferAttempt {
	return &TransferAttempt{
		composer:  composer,
		state:     entity.TransferIdle,
		view:      view,
		networkID: strings.ToLower(networkID),
	}
}

func (a *TransferAttempt) State() entity.TransferState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Validation returns the result of the latest validation.
func (a *TransferAttempt) Validation() entity.ValidationResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validation
}

// Result returns the submission result once confirmed.
func (a *TransferAttempt) Result() (entity.SubmissionResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return entity.SubmissionResult{}, false
	}
	return *a.result, true
}

// Err returns the error of the last failed submission.
func (a *TransferAttempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Input returns the entered recipient and amount.
func (a *TransferAttempt) Input() (string, decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recipient, a.amount
}

// Edit records new input and validates it. A valid attempt moves to
// Estimating, or straight to Ready when the fee is already settled.
func (a *TransferAttempt) Edit(recipient string, amount decimal.Decimal) (entity.ValidationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.transitionLocked(entity.TransferValidating); err != nil {
		return entity.ValidationResult{}, err
	}
	a.recipient = recipient
	a.amount = amount
	a.revalidateLocked()
	return a.validation, nil
}

// SetFee records a fee estimate. Validation is re-run since a fee in the
// transferred denomination changes the required balance.
func (a *TransferAttempt) SetFee(fee entity.FeeEstimate) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fee = fee
	switch a.state {
	case entity.TransferEstimating, entity.TransferReady, entity.TransferInvalid:
		if err := a.transitionLocked(entity.TransferValidating); err != nil {
			return err
		}
		a.revalidateLocked()
	}
	return nil
}

// Submit builds a fresh intent and hands it to the wallet core. It never retries.
func (a *TransferAttempt) Submit(ctx context.Context) (entity.SubmissionResult, error) {
	a.mu.Lock()
	if a.state != entity.TransferReady {
		from := a.state
		a.mu.Unlock()
		return entity.SubmissionResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, entity.TransferSubmitting)
	}
	intent, validation := a.composer.BuildIntent(a.recipient, a.amount, a.view, a.networkID, a.fee)
	if !validation.Valid {
		a.validation = validation
		_ = a.transitionLocked(entity.TransferValidating)
		_ = a.transitionLocked(entity.TransferInvalid)
		a.mu.Unlock()
		return entity.SubmissionResult{}, fmt.Errorf("%w: transfer is no longer valid", ErrInvalidTransition)
	}
	a.state = entity.TransferSubmitting
	a.mu.Unlock()

	res, err := a.composer.Submit(ctx, intent)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.lastErr = err
		a.state = entity.TransferFailed
		return entity.SubmissionResult{}, err
	}
	a.result = &res
	a.lastErr = nil
	a.state = entity.TransferConfirmed
	return res, nil
}

// Resume returns a failed attempt to Ready with its input intact.
func (a *TransferAttempt) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transitionLocked(entity.TransferReady)
}

// revalidateLocked expects the attempt in Validating and moves it through the
// transition table to Invalid, Estimating or Ready.
func (a *TransferAttempt) revalidateLocked() {
	a.validation = a.composer.Validate(a.recipient, a.amount, a.view, a.networkID, a.fee)
	if !a.validation.Valid {
		_ = a.transitionLocked(entity.TransferInvalid)
		return
	}
	_ = a.transitionLocked(entity.TransferEstimating)
	if a.fee.Status() != entity.FeeStatusPending {
		_ = a.transitionLocked(entity.TransferReady)
	}
}

func (a *TransferAttempt) transitionLocked(to entity.TransferState) error {
	if !CanTransition(a.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, to)
	}
	a.state = to
	return nil
}
