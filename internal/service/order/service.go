// Package order is the gateway between the storefront and the payment
// provider's orders API. Both operations are stateless proxies: input shape
// checks happen here, business validation stays with the provider.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"giftcard-store/internal/domain"
	"giftcard-store/internal/money"
	"giftcard-store/internal/paypal"
)

type Service struct {
	provider Provider
	currency string
	logger   *log.Logger
}

type Provider interface {
	CreateOrder(ctx context.Context, order paypal.OrderRequest) (*paypal.Response, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Response, error)
}

// Result carries the provider's reply verbatim to the HTTP layer.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

func New(provider Provider, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if currency == "" {
		currency = "USD"
	}
	return &Service{provider: provider, currency: currency, logger: logger}
}

// Initiate creates a provider order for the given cart items. Items with a
// non-positive amount or quantity are dropped; if nothing survives the filter
// the call fails with ErrValidation before any network traffic.
func (s *Service) Initiate(ctx context.Context, items []domain.CartItem) (*Result, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart items are required", domain.ErrValidation)
	}

	valid := filterValid(items)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid cart items found", domain.ErrValidation)
	}

	var totalCents int64
	for _, item := range valid {
		totalCents += item.GiftCard.ValueCents * int64(item.Quantity)
	}

	req := paypal.OrderRequest{
		Intent: paypal.IntentCapture,
		PurchaseUnits: []paypal.PurchaseUnit{
			{
				Amount: paypal.Amount{
					CurrencyCode: s.currency,
					Value:        money.FormatValue(totalCents),
				},
				Description: Description(valid),
			},
		},
	}

	resp, err := s.provider.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Printf("order: create failed: %v", err)
		return nil, err
	}
	s.logger.Printf("order: created total=%s status=%d", money.FormatValue(totalCents), resp.StatusCode)
	return &Result{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// Capture finalizes a previously-initiated order by id and passes the
// provider's reply through.
func (s *Service) Capture(ctx context.Context, orderID string) (*Result, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}

	resp, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		s.logger.Printf("order: capture %s failed: %v", orderID, err)
		return nil, err
	}
	s.logger.Printf("order: captured id=%s status=%d", orderID, resp.StatusCode)
	return &Result{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// Description renders the human-readable purchase summary, e.g.
// "Gift Card Purchase: 2x $15 Gift Card, 1x $50 Gift Card".
func Description(items []domain.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s Gift Card", item.Quantity, money.FormatCompact(item.GiftCard.ValueCents)))
	}
	return "Gift Card Purchase: " + strings.Join(parts, ", ")
}

func filterValid(items []domain.CartItem) []domain.CartItem {
	valid := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.GiftCard.ValueCents > 0 && item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	return valid
}
