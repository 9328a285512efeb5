package domain

import "time"

// Quantity bounds per cart line.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CartItem struct {
	LineID   string   `json:"lineId"`
	GiftCard GiftCard `json:"giftCard"`
	Quantity int      `json:"quantity"`
}

// TotalCents sums value*quantity over all lines.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.GiftCard.ValueCents * int64(item.Quantity)
	}
	return total
}

// TotalQuantity sums line quantities.
func (c Cart) TotalQuantity() int {
	var total int
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Snapshot returns a copy of the item list so a checkout attempt is not
// affected by later cart mutation.
func (c Cart) Snapshot() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}
