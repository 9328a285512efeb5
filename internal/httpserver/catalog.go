package httpserver

import (
	"errors"
	"net/http"

	"giftcard-store/internal/domain"
	"giftcard-store/internal/money"

	"github.com/gin-gonic/gin"
)

type giftCardResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	ValueCents  int64  `json:"valueCents"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	Custom      bool   `json:"custom,omitempty"`
}

func toGiftCardResponse(c domain.GiftCard) giftCardResponse {
	return giftCardResponse{
		ID:          c.ID,
		Name:        c.Name,
		Value:       money.FormatValue(c.ValueCents),
		ValueCents:  c.ValueCents,
		Currency:    c.Currency,
		Description: c.Description,
		Custom:      c.Custom,
	}
}

func listGiftCardsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cards, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load gift cards"})
			return
		}
		out := make([]giftCardResponse, 0, len(cards))
		for _, card := range cards {
			out = append(out, toGiftCardResponse(card))
		}
		c.JSON(http.StatusOK, gin.H{"giftCards": out})
	}
}

type customCardRequest struct {
	Amount string `json:"amount"`
}

func customGiftCardHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
			return
		}
		cents, err := money.ParseDollars(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		card, err := svc.Custom(cents)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build gift card"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"giftCard": toGiftCardResponse(*card)})
	}
}
