package domain

import "encoding/json"

// Transaction is the capture or authorization record extracted from the
// provider's capture response. Only the fields the receipt view needs are
// decoded; the raw record rides along untouched.
type Transaction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// Receipt bundles a completed checkout: the extracted transaction, the cart
// snapshot submitted with the order, and the total computed from it.
type Receipt struct {
	OrderID     string      `json:"orderId"`
	Transaction Transaction `json:"transaction"`
	Items       []CartItem  `json:"items"`
	TotalCents  int64       `json:"totalCents"`
}
