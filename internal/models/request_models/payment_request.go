package request_models

import "github.com/shopspring/decimal"

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GatewayCallback is the flattened set of pg_* fields from a check or
// result delivery (query string and form body merged).
type GatewayCallback map[string]string

func (g GatewayCallback) OrderID() string       { return g["pg_order_id"] }
func (g GatewayCallback) PaymentID() string     { return g["pg_payment_id"] }
func (g GatewayCallback) PaymentMethod() string { return g["pg_payment_method"] }

// Amount parses pg_amount.
func (g GatewayCallback) Amount() (decimal.Decimal, error) {
	return decimal.NewFromString(g["pg_amount"])
}

// Succeeded reports pg_result == 1.
func (g GatewayCallback) Succeeded() bool { return g["pg_result"] == "1" }

func (g GatewayCallback) FailureCode() string        { return g["pg_failure_code"] }
func (g GatewayCallback) FailureDescription() string { return g["pg_failure_description"] }
