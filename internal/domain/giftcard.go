package domain

import "time"

// GiftCard is a purchasable denomination. Stock cards come from the catalog
// table; custom cards are synthesized with an id derived from their amount.
type GiftCard struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ValueCents  int64     `json:"valueCents"`
	Currency    string    `json:"currency"`
	Description string    `json:"description,omitempty"`
	Custom      bool      `json:"custom,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
