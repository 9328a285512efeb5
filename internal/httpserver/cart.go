package httpserver

import (
	"errors"
	"net/http"

	"giftcard-store/internal/checkout"
	"giftcard-store/internal/domain"
	"giftcard-store/internal/money"

	"github.com/gin-gonic/gin"
)

type cartResponse struct {
	Items         []cartLineResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	Total         string             `json:"total"`
	TotalCents    int64              `json:"totalCents"`
}

type cartLineResponse struct {
	LineID    string           `json:"lineId"`
	GiftCard  giftCardResponse `json:"giftCard"`
	Quantity  int              `json:"quantity"`
	LineTotal string           `json:"lineTotal"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	items := make([]cartLineResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartLineResponse{
			LineID:    item.LineID,
			GiftCard:  toGiftCardResponse(item.GiftCard),
			Quantity:  item.Quantity,
			LineTotal: money.FormatValue(item.GiftCard.ValueCents * int64(item.Quantity)),
		})
	}
	return cartResponse{
		Items:         items,
		TotalQuantity: cart.TotalQuantity(),
		Total:         money.FormatValue(cart.TotalCents()),
		TotalCents:    cart.TotalCents(),
	}
}

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), sessionID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

type addItemRequest struct {
	GiftCardID string `json:"giftCardId"`
	Quantity   int    `json:"quantity"`

	// Custom amount in dollars, mutually exclusive with giftCardId.
	CustomAmount string `json:"customAmount,omitempty"`
}

func addCartItemHandler(svc CartService, catalogSvc CatalogService, flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "giftCardId and quantity are required"})
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		var card *domain.GiftCard
		var err error
		switch {
		case req.CustomAmount != "":
			var cents int64
			cents, err = money.ParseDollars(req.CustomAmount)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
				return
			}
			card, err = catalogSvc.Custom(cents)
		case req.GiftCardID != "":
			card, err = catalogSvc.Get(c.Request.Context(), req.GiftCardID)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "giftCardId is required"})
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "gift card not found"})
			case errors.Is(err, domain.ErrValidation):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
			}
			return
		}

		cart, err := svc.Add(c.Request.Context(), sessionID(c), *card, req.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
			return
		}
		rebindCheckout(flows, sessionID(c), cart)
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

type changeQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func changeQuantityHandler(svc CartService, flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		cart, err := svc.ChangeQuantity(c.Request.Context(), sessionID(c), c.Param("lineID"), req.Quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}
		rebindCheckout(flows, sessionID(c), cart)
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

func removeCartItemHandler(svc CartService, flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Remove(c.Request.Context(), sessionID(c), c.Param("lineID"))
		if err != nil {
			respondCartError(c, err)
			return
		}
		rebindCheckout(flows, sessionID(c), cart)
		c.JSON(http.StatusOK, toCartResponse(*cart))
	}
}

func clearCartHandler(svc CartService, flows *checkout.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), sessionID(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		if flows != nil {
			flows.Close(sessionID(c))
		}
		c.Status(http.StatusNoContent)
	}
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
	}
}

// rebindCheckout re-creates the button binding after a cart change so a
// mounted widget never submits a stale snapshot. Emptying the cart closes
// the attempt entirely.
func rebindCheckout(flows *checkout.Manager, sessionID string, cart *domain.Cart) {
	if flows == nil || cart == nil {
		return
	}
	flows.Rebind(sessionID, cart.Snapshot())
}
