package request_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest takes the user's cart when ProductIDs is empty.
type CreateOrderRequest struct {
	ProductIDs   []uuid.UUID `json:"product_ids"`
	VoucherID    *uuid.UUID  `json:"voucher_id"`
	RedeemPoints int64       `json:"redeem_points" binding:"gte=0"`
}

// UpdateOrderRequest is the admin patch. Status only moves through payment callbacks.
type UpdateOrderRequest struct {
	PaymentMethod *string          `json:"payment_method"`
	TransactionID *string          `json:"transaction_id"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	RedeemPoints  *int64           `json:"redeem_points" binding:"omitempty,gte=0"`
}

type ListQuery struct {
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	Description string `form:"description"`
	Order       string `form:"order"`
	OrderColumn string `form:"orderColumn"`
	Status      string `form:"status"`
}

func (q *ListQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}
