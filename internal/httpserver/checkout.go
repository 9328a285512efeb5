package httpserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"giftcard-store/internal/checkout"
	"giftcard-store/internal/domain"
	"giftcard-store/internal/money"

	"github.com/gin-gonic/gin"
)

type checkoutStateResponse struct {
	State   string           `json:"state"`
	OrderID string           `json:"orderId,omitempty"`
	Failure string           `json:"failure,omitempty"`
	Receipt *receiptResponse `json:"receipt,omitempty"`
}

type receiptResponse struct {
	OrderID     string              `json:"orderId"`
	Transaction transactionResponse `json:"transaction"`
	Lines       []receiptLine       `json:"lines"`
	Total       string              `json:"total"`
	TotalCents  int64               `json:"totalCents"`
}

type transactionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type receiptLine struct {
	Label      string `json:"label"`
	Quantity   int    `json:"quantity"`
	LineTotal  string `json:"lineTotal"`
	TotalCents int64  `json:"totalCents"`
}

func toReceiptResponse(r *domain.Receipt) *receiptResponse {
	if r == nil {
		return nil
	}
	lines := make([]receiptLine, 0, len(r.Items))
	for _, item := range r.Items {
		lineCents := item.GiftCard.ValueCents * int64(item.Quantity)
		lines = append(lines, receiptLine{
			Label:      fmt.Sprintf("%dx %s Gift Card", item.Quantity, money.FormatCompact(item.GiftCard.ValueCents)),
			Quantity:   item.Quantity,
			LineTotal:  money.FormatUSD(lineCents),
			TotalCents: lineCents,
		})
	}
	return &receiptResponse{
		OrderID: r.OrderID,
		Transaction: transactionResponse{
			ID:     r.Transaction.ID,
			Status: r.Transaction.Status,
		},
		Lines:      lines,
		Total:      money.FormatUSD(r.TotalCents),
		TotalCents: r.TotalCents,
	}
}

func toCheckoutState(f *checkout.Flow) checkoutStateResponse {
	return checkoutStateResponse{
		State:   f.State().String(),
		Failure: f.FailureMessage(),
		Receipt: toReceiptResponse(f.Receipt()),
	}
}

// checkoutConfigHandler hands the storefront what it needs to load the
// provider's button script. The config resolves once per process.
func checkoutConfigHandler(bootstrap *checkout.Bootstrap) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := bootstrap.Config()
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment system unavailable. Please try again later."})
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

// beginCheckoutHandler opens a checkout attempt over the session's cart and
// resolves the payment widget configuration. The configuration loads once
// per process; a load failure fails the attempt rather than blocking retry
// of the whole session.
func beginCheckoutHandler(cartSvc CartService, flows *checkout.Manager, bootstrap *checkout.Bootstrap) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := cartSvc.Get(c.Request.Context(), sessionID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
			return
		}

		flow, err := flows.Begin(sessionID(c), cart.Snapshot())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrValidation):
				c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			case errors.Is(err, checkout.ErrInvalidState):
				c.JSON(http.StatusConflict, gin.H{"error": "checkout already in progress"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start checkout"})
			}
			return
		}

		cfg, err := bootstrap.Config()
		if err != nil {
			flow.ScriptFailed("Payment system unavailable. Please try again later.")
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment system unavailable. Please try again later.",
				"state": flow.State().String(),
			})
			return
		}
		if err := flow.ScriptReady(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "checkout already in progress"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"state":  flow.State().String(),
			"script": cfg,
		})
	}
}

func checkoutStateHandler(flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := flows.Get(sessionID(c))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active checkout"})
			return
		}
		c.JSON(http.StatusOK, toCheckoutState(flow))
	}
}

func checkoutCreateOrderHandler(flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := flows.Get(sessionID(c))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active checkout"})
			return
		}

		orderID, err := flow.CreateOrder(c.Request.Context())
		if err != nil {
			respondFlowError(c, flow, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orderId": orderID,
			"state":   flow.State().String(),
		})
	}
}

// checkoutApproveHandler captures the initiated order. A recoverable decline
// returns restart=true so the widget re-prompts; success clears the cart and
// returns the receipt.
func checkoutApproveHandler(flows *checkout.Manager, cartSvc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := flows.Get(sessionID(c))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active checkout"})
			return
		}

		res, err := flow.Approve(c.Request.Context())
		if err != nil {
			respondFlowError(c, flow, err)
			return
		}
		if res.Restart {
			c.JSON(http.StatusOK, gin.H{
				"restart": true,
				"state":   flow.State().String(),
			})
			return
		}

		// The cart is cleared exactly once, on the transition into success.
		if err := cartSvc.Clear(c.Request.Context(), sessionID(c)); err != nil {
			// The payment already went through; the receipt still ships.
			logger.Printf("checkout: clear cart after capture session=%s error=%v", sessionID(c), err)
		}
		c.JSON(http.StatusOK, gin.H{
			"state":   flow.State().String(),
			"receipt": toReceiptResponse(res.Receipt),
		})
	}
}

func checkoutRetryHandler(flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := flows.Get(sessionID(c))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active checkout"})
			return
		}
		if err := flow.Retry(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "nothing to retry"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": flow.State().String()})
	}
}

func closeCheckoutHandler(flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		flows.Close(sessionID(c))
		c.Status(http.StatusNoContent)
	}
}

func respondFlowError(c *gin.Context, flow *checkout.Flow, err error) {
	switch {
	case errors.Is(err, checkout.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid checkout state", "state": flow.State().String()})
	case errors.Is(err, checkout.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": "checkout changed, please retry", "state": flow.State().String()})
	default:
		msg := flow.FailureMessage()
		if msg == "" {
			msg = "Checkout encountered an error. Please try again."
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "state": flow.State().String()})
	}
}
