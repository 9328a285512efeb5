package httpserver

import (
	"errors"
	"net/http"

	"giftcard-store/internal/domain"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	CartItems []createOrderItem `json:"cartItems"`
}

type createOrderItem struct {
	GiftCard struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		ValueCents int64  `json:"valueCents"`
	} `json:"giftCard"`
	Quantity int `json:"quantity"`
}

// createOrderHandler forwards the cart to the payment provider and relays
// the provider's reply verbatim, status code included. Only validation
// failures and transport-level errors produce a locally built body.
func createOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart items are required"})
			return
		}

		items := make([]domain.CartItem, 0, len(req.CartItems))
		for _, item := range req.CartItems {
			items = append(items, domain.CartItem{
				GiftCard: domain.GiftCard{
					ID:         item.GiftCard.ID,
					Name:       item.GiftCard.Name,
					ValueCents: item.GiftCard.ValueCents,
				},
				Quantity: item.Quantity,
			})
		}

		res, err := svc.Initiate(c.Request.Context(), items)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order."})
			return
		}
		c.Data(res.StatusCode, "application/json", res.Body)
	}
}

func captureOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Capture(c.Request.Context(), c.Param("orderID"))
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to capture order."})
			return
		}
		c.Data(res.StatusCode, "application/json", res.Body)
	}
}
