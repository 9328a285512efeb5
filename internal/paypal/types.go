package paypal

import "encoding/json"

// Intent values for order creation. Capture defers settlement until the
// explicit capture call after shopper approval.
const IntentCapture = "CAPTURE"

// OrderRequest is the request sent to the provider to initiate an order.
type OrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

// PurchaseUnit carries one amount + description pair for an order.
type PurchaseUnit struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Amount is the provider's money object: ISO currency code plus a fixed
// 2-decimal string value.
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Response is a provider reply handed back verbatim: the HTTP status and the
// raw JSON body, uninterpreted.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OrderBody is the decoded subset of create/capture responses this system
// inspects. Everything else stays in the raw body.
type OrderBody struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	DebugID       string             `json:"debug_id"`
	Details       []ErrorDetail      `json:"details"`
	PurchaseUnits []PurchaseUnitBody `json:"purchase_units"`
}

type ErrorDetail struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
}

type PurchaseUnitBody struct {
	Payments *Payments `json:"payments"`
}

type Payments struct {
	Captures       []json.RawMessage `json:"captures"`
	Authorizations []json.RawMessage `json:"authorizations"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
