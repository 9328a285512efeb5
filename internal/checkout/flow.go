// Package checkout models the provider button flow as an explicit state
// machine instead of nested callbacks: each widget hook (create, approve,
// widget error) is a transition, the recoverable-decline restart is a state
// edge, and stale cart snapshots are rejected by a sequence check.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"giftcard-store/internal/domain"
	"giftcard-store/internal/paypal"
	ordersvc "giftcard-store/internal/service/order"
)

type State int

const (
	StateIdle State = iota
	StateLoadingScript
	StateReady
	StateOrderInitiated
	StateAwaitingApproval
	StateCapturing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingScript:
		return "loadingScript"
	case StateReady:
		return "ready"
	case StateOrderInitiated:
		return "orderInitiated"
	case StateAwaitingApproval:
		return "awaitingApproval"
	case StateCapturing:
		return "capturing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidState rejects a transition the current state does not allow,
	// including re-entrant create/approve while an attempt is in flight.
	ErrInvalidState = errors.New("invalid checkout state")

	// ErrStale marks a response that arrived after the cart changed or the
	// checkout surface closed; the result must not be acted on.
	ErrStale = errors.New("stale checkout attempt")
)

// Gateway is the order-service surface the flow drives.
type Gateway interface {
	Initiate(ctx context.Context, items []domain.CartItem) (*ordersvc.Result, error)
	Capture(ctx context.Context, orderID string) (*ordersvc.Result, error)
}

// ApproveResult reports how a capture attempt ended. Exactly one of Restart
// and Receipt is set on a nil-error return: Restart means the decline is
// recoverable and the widget should re-prompt.
type ApproveResult struct {
	Restart bool
	Receipt *domain.Receipt
}

// Flow is one checkout attempt over one cart snapshot. All mutation happens
// under the mutex; network calls run outside it with a sequence recheck on
// completion, so a late provider response can never override newer state.
type Flow struct {
	gateway Gateway

	mu       sync.Mutex
	state    State
	snapshot []domain.CartItem
	seq      uint64
	orderID  string
	failMsg  string
	receipt  *domain.Receipt
	closed   bool
}

func NewFlow(gateway Gateway) *Flow {
	return &Flow{gateway: gateway, state: StateIdle}
}

// Begin enters checkout with the current cart snapshot. An empty cart cannot
// enter checkout.
func (f *Flow) Begin(items []domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateIdle {
		return fmt.Errorf("%w: begin from %s", ErrInvalidState, f.state)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	f.snapshot = copyItems(items)
	f.seq++
	f.state = StateLoadingScript
	return nil
}

// ScriptReady records that the provider script finished loading and the
// button widget is mounted.
func (f *Flow) ScriptReady() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateLoadingScript {
		return fmt.Errorf("%w: script ready from %s", ErrInvalidState, f.state)
	}
	f.state = StateReady
	return nil
}

// ScriptFailed is terminal: script-load failure is surfaced to the shopper
// and never retried automatically.
func (f *Flow) ScriptFailed(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateFailed
	f.failMsg = msg
}

// UpdateSnapshot replaces the cart snapshot after a cart mutation. The widget
// is conceptually torn down and re-created: any initiated order is abandoned
// and in-flight responses become stale.
func (f *Flow) UpdateSnapshot(items []domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateReady, StateOrderInitiated, StateAwaitingApproval:
	default:
		return fmt.Errorf("%w: snapshot update from %s", ErrInvalidState, f.state)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	f.snapshot = copyItems(items)
	f.seq++
	f.orderID = ""
	f.state = StateReady
	return nil
}

// CreateOrder is the widget's create hook: it initiates a provider order for
// the bound snapshot and returns the provider-issued order id.
func (f *Flow) CreateOrder(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return "", ErrStale
	}
	if f.state != StateReady {
		f.mu.Unlock()
		return "", fmt.Errorf("%w: create from %s", ErrInvalidState, f.state)
	}
	f.state = StateOrderInitiated
	seq := f.seq
	items := copyItems(f.snapshot)
	f.mu.Unlock()

	res, err := f.gateway.Initiate(ctx, items)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.seq != seq {
		return "", ErrStale
	}
	if err != nil {
		f.state = StateFailed
		f.failMsg = fmt.Sprintf("Could not initiate checkout: %v", err)
		return "", err
	}

	var body paypal.OrderBody
	if decodeErr := json.Unmarshal(res.Body, &body); decodeErr != nil || body.ID == "" {
		f.state = StateFailed
		f.failMsg = "Could not initiate checkout: " + orderErrorMessage(body, res.Body)
		return "", errors.New(f.failMsg)
	}

	f.orderID = body.ID
	f.state = StateAwaitingApproval
	return body.ID, nil
}

// Approve is the widget's approve hook, invoked after shopper authorization.
// It captures the initiated order and classifies the outcome: recoverable
// decline (restart), non-recoverable failure, or success with an extracted
// transaction.
func (f *Flow) Approve(ctx context.Context) (*ApproveResult, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrStale
	}
	if f.state != StateAwaitingApproval {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: approve from %s", ErrInvalidState, f.state)
	}
	f.state = StateCapturing
	seq := f.seq
	orderID := f.orderID
	items := copyItems(f.snapshot)
	f.mu.Unlock()

	res, err := f.gateway.Capture(ctx, orderID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.seq != seq {
		return nil, ErrStale
	}
	if err != nil {
		f.state = StateFailed
		f.failMsg = fmt.Sprintf("Transaction could not be processed: %v", err)
		return nil, err
	}

	var body paypal.OrderBody
	if decodeErr := json.Unmarshal(res.Body, &body); decodeErr != nil {
		f.state = StateFailed
		f.failMsg = "Transaction could not be processed: " + string(res.Body)
		return nil, errors.New(f.failMsg)
	}

	if len(body.Details) > 0 {
		if body.Details[0].Issue == "INSTRUMENT_DECLINED" {
			// Recoverable: re-prompt the shopper instead of terminating.
			f.orderID = ""
			f.state = StateReady
			return &ApproveResult{Restart: true}, nil
		}
		f.state = StateFailed
		f.failMsg = fmt.Sprintf("Transaction could not be processed: %s (%s)", body.Details[0].Description, body.DebugID)
		return nil, errors.New(f.failMsg)
	}

	tx, ok := extractTransaction(body)
	if !ok {
		f.state = StateFailed
		f.failMsg = "Transaction could not be processed: " + string(res.Body)
		return nil, errors.New(f.failMsg)
	}

	var total int64
	for _, item := range items {
		total += item.GiftCard.ValueCents * int64(item.Quantity)
	}
	f.receipt = &domain.Receipt{
		OrderID:     orderID,
		Transaction: tx,
		Items:       items,
		TotalCents:  total,
	}
	f.state = StateSucceeded
	return &ApproveResult{Receipt: f.receipt}, nil
}

// WidgetError is the widget-level error hook: it fails the attempt with a
// generic retry-prompting message. No automatic retry.
func (f *Flow) WidgetError() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSucceeded {
		return
	}
	f.state = StateFailed
	f.failMsg = "Checkout encountered an error. Please try again."
}

// Retry re-arms a failed attempt over the same snapshot. The shopper drives
// this explicitly; nothing retries on its own.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFailed || f.closed {
		return fmt.Errorf("%w: retry from %s", ErrInvalidState, f.state)
	}
	if len(f.snapshot) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	f.failMsg = ""
	f.orderID = ""
	f.seq++
	f.state = StateReady
	return nil
}

// Close abandons the attempt. In-flight calls are not cancelled; their
// responses are discarded as stale when they land.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) FailureMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failMsg
}

func (f *Flow) Receipt() *domain.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// extractTransaction pulls the first capture, or failing that the first
// authorization, from the first purchase unit.
func extractTransaction(body paypal.OrderBody) (domain.Transaction, bool) {
	if len(body.PurchaseUnits) == 0 {
		return domain.Transaction{}, false
	}
	payments := body.PurchaseUnits[0].Payments
	if payments == nil {
		return domain.Transaction{}, false
	}
	var raw json.RawMessage
	switch {
	case len(payments.Captures) > 0:
		raw = payments.Captures[0]
	case len(payments.Authorizations) > 0:
		raw = payments.Authorizations[0]
	default:
		return domain.Transaction{}, false
	}

	var tx domain.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return domain.Transaction{}, false
	}
	tx.Raw = raw
	return tx, true
}

// orderErrorMessage formats a create-order failure the way the storefront
// surfaces it: issue + description + debug id when present, raw body
// otherwise.
func orderErrorMessage(body paypal.OrderBody, raw json.RawMessage) string {
	if len(body.Details) > 0 {
		d := body.Details[0]
		return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", d.Issue, d.Description, body.DebugID))
	}
	return string(raw)
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
