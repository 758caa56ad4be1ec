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

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNoFeeOracle is reported when no oracle serves the requested network.
	ErrNoFeeOracle = errors.New("no fee oracle for network")
	// ErrAmountRequired is reported for amount-sensitive networks without an amount.
	ErrAmountRequired = errors.New("amount required for fee estimate")
)

// feeEstimatorImpl implements port.FeeService.
type feeEstimatorImpl struct {
	registry port.FeeOracleRegistry
	logger   port.Logger
	group    singleflight.Group
	now      func() time.Time
}

// NewFeeEstimator creates a fee estimator routing requests through the registry.
func NewFeeEstimator(registry port.FeeOracleRegistry, l port.Logger) port.FeeService {
	return &feeEstimatorImpl{
		registry: registry,
		logger:   l.With("component", "fee_estimator"),
		now:      time.Now,
	}
}

// FeeKey identifies a fee request. The amount is part of the key only when
// the network's fee model depends on it.
func FeeKey(req entity.FeeRequest, amountSensitive bool) string {
	amount := "-"
	if amountSensitive && req.Amount != nil {
		amount = req.Amount.String()
	}
	return strings.ToLower(req.NetworkID) + "|" + strings.ToLower(req.Denomination) + "|" + amount
}

func (e *feeEstimatorImpl) AmountSensitive(networkID, denomination string) bool {
	if e.registry == nil {
		return false
	}
	oracle, ok := e.registry.Oracle(strings.ToLower(networkID))
	if !ok {
		return false
	}
	return oracle.AmountSensitive(strings.ToLower(networkID), strings.ToLower(denomination))
}

// Estimate never returns a zero fee on failure: the reason is carried in the
// estimate instead. Identical concurrent requests share one oracle call.
func (e *feeEstimatorImpl) Estimate(ctx context.Context, req entity.FeeRequest) entity.FeeEstimate {
	req.NetworkID = strings.ToLower(strings.TrimSpace(req.NetworkID))
	req.Denomination = strings.ToLower(strings.TrimSpace(req.Denomination))

	var oracle port.FeeOracle
	ok := false
	if e.registry != nil {
		oracle, ok = e.registry.Oracle(req.NetworkID)
	}
	if !ok {
		metrics.FeeEstimations.WithLabelValues(req.NetworkID, metrics.StatusError).Inc()
		return entity.FailedFeeEstimate(fmt.Sprintf("%v: %s", ErrNoFeeOracle, req.NetworkID), e.now())
	}

	sensitive := oracle.AmountSensitive(req.NetworkID, req.Denomination)
	if !sensitive {
		req.Amount = nil
	} else if req.Amount == nil || !req.Amount.IsPositive() {
		return entity.FailedFeeEstimate(ErrAmountRequired.Error(), e.now())
	}

	key := FeeKey(req, sensitive)
	v, err, shared := e.group.Do(key, func() (interface{}, error) {
		return oracle.EstimateFee(ctx, req)
	})
	if err != nil {
		e.logger.Warn("Fee estimation failed", "key", key, "error", err)
		metrics.FeeEstimations.WithLabelValues(req.NetworkID, metrics.StatusError).Inc()
		return entity.FailedFeeEstimate(err.Error(), e.now())
	}

	fee, _ := v.(entity.Fee)
	if fee.Amount.IsNegative() {
		metrics.FeeEstimations.WithLabelValues(req.NetworkID, metrics.StatusError).Inc()
		return entity.FailedFeeEstimate(fmt.Sprintf("oracle returned negative fee %s", fee.Amount), e.now())
	}
	if fee.Denomination == "" {
		fee.Denomination = req.Denomination
	}
	fee.Denomination = strings.ToLower(fee.Denomination)

	e.logger.Debug("Fee estimated", "key", key, "fee", fee.Amount.String(), "feeDenomination", fee.Denomination, "shared", shared)
	metrics.FeeEstimations.WithLabelValues(req.NetworkID, metrics.StatusOK).Inc()
	return entity.NewFeeEstimate(fee, e.now())
}

// FeeTracker keeps the fee estimate of one transfer screen current while the
// user changes the network selection and the amount.
//
// Every selection, amount edit or retry starts a new generation; completions
// of older generations are discarded, so the shown estimate always belongs to
// the latest selection regardless of the order responses arrive in.
type FeeTracker struct {
	ctx       context.Context
	estimator port.FeeService
	debounce  time.Duration
	logger    port.Logger

	mu          sync.Mutex
	networkID   string
	denom       string
	amount      *decimal.Decimal
	sensitive   bool
	generation  uint64
	current     entity.FeeEstimate
	timer       *time.Timer
	subscribers []chan entity.FeeEstimate
	closed      bool
}

// NewFeeTracker creates a tracker. In-flight estimates use ctx; cancel it or
// call Close when the screen goes away.
func NewFeeTracker(ctx context.Context, estimator port.FeeService, debounce time.Duration, l port.Logger) *FeeTracker {
	return &FeeTracker{
		ctx:       ctx,
		estimator: estimator,
		debounce:  debounce,
		logger:    l.With("component", "fee_tracker"),
	}
}

// Select switches the tracked network and denomination and estimates right away.
// The entered amount is kept.
func (t *FeeTracker) Select(networkID, denomination string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.networkID = strings.ToLower(networkID)
	t.denom = strings.ToLower(denomination)
	t.sensitive = t.estimator.AmountSensitive(t.networkID, t.denom)
	t.stopTimerLocked()

	gen := t.nextGenerationLocked()
	if t.sensitive && !hasAmount(t.amount) {
		// ждём ввода суммы
		return
	}
	t.launchLocked(gen)
}

// SetAmount records a new amount. Amount-sensitive selections are re-estimated
// after the debounce interval; others keep their estimate.
func (t *FeeTracker) SetAmount(amount *decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if amount != nil {
		a := *amount
		t.amount = &a
	} else {
		t.amount = nil
	}
	if t.networkID == "" || !t.sensitive {
		return
	}

	t.stopTimerLocked()
	gen := t.nextGenerationLocked()
	if !hasAmount(t.amount) {
		return
	}
	if t.debounce <= 0 {
		t.launchLocked(gen)
		return
	}
	t.timer = time.AfterFunc(t.debounce, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || gen != t.generation {
			return
		}
		t.launchLocked(gen)
	})
}

// Retry re-estimates the current selection immediately.
func (t *FeeTracker) Retry() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.networkID == "" {
		return
	}
	t.stopTimerLocked()
	gen := t.nextGenerationLocked()
	if t.sensitive && !hasAmount(t.amount) {
		return
	}
	t.launchLocked(gen)
}

// AmountSensitive reports whether the current selection is re-estimated on amount edits.
func (t *FeeTracker) AmountSensitive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sensitive
}

// Current returns the latest estimate. A zero estimate means pending.
func (t *FeeTracker) Current() entity.FeeEstimate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Subscribe returns a channel receiving every accepted estimate. Slow readers
// only see the most recent value.
func (t *FeeTracker) Subscribe() <-chan entity.FeeEstimate {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan entity.FeeEstimate, 1)
	if t.closed {
		close(ch)
		return ch
	}
	t.subscribers = append(t.subscribers, ch)
	return ch
}

// Close stops pending work and closes subscriber channels.
func (t *FeeTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.stopTimerLocked()
	for _, ch := range t.subscribers {
		close(ch)
	}
	t.subscribers = nil
}

func (t *FeeTracker) nextGenerationLocked() uint64 {
	t.generation++
	t.current = entity.FeeEstimate{}
	return t.generation
}

func (t *FeeTracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *FeeTracker) launchLocked(gen uint64) {
	req := entity.FeeRequest{NetworkID: t.networkID, Denomination: t.denom}
	if t.sensitive && t.amount != nil {
		a := *t.amount
		req.Amount = &a
	}
	go func() {
		est := t.estimator.Estimate(t.ctx, req)
		t.complete(gen, est)
	}()
}

func (t *FeeTracker) complete(gen uint64, est entity.FeeEstimate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.generation {
		metrics.StaleFeeCompletions.Inc()
		t.logger.Debug("Discarding stale fee estimate", "generation", gen, "current", t.generation)
		return
	}
	t.current = est
	for _, ch := range t.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- est
	}
}

func hasAmount(amount *decimal.Decimal) bool {
	return amount != nil && amount.IsPositive()
}
