package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentInitResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	Identifier  string          `json:"identifier"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentID   string          `json:"payment_id,omitempty"`
	RedirectURL string          `json:"redirect_url"`
	Provider    string          `json:"provider"`
}

type PaymentStatusResponse struct {
	OrderID            uuid.UUID        `json:"order_id"`
	Identifier         string           `json:"identifier"`
	Status             string           `json:"status"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	PaymentAmount      *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentMethod      string           `json:"payment_method,omitempty"`
	TransactionID      string           `json:"transaction_id,omitempty"`
	PaymentCompletedAt string           `json:"payment_completed_at,omitempty"`
}

// PaymentRedirectResponse is shown on the success/failure landing pages.
// It is informational; the result callback decides the order status.
type PaymentRedirectResponse struct {
	Outcome     string            `json:"outcome"`
	Identifier  string            `json:"identifier"`
	OrderStatus string            `json:"order_status,omitempty"`
	Params      map[string]string `json:"params"`
}
