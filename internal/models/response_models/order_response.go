package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	dbm "bookstore/internal/models/db_models"
	"bookstore/pkg/utils"
)

type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        datatypes.JSON  `json:"title"`
	Author       string          `json:"author"`
	Kind         string          `json:"kind"`
	Price        decimal.Decimal `json:"price"`
	IsDiscounted bool            `json:"is_discounted"`
	CoverKey     string          `json:"cover_key,omitempty"`
}

type OrderResponse struct {
	ID                     uuid.UUID         `json:"id"`
	Identifier             string            `json:"identifier"`
	UserID                 uuid.UUID         `json:"user_id"`
	Products               []ProductResponse `json:"products"`
	VoucherID              *uuid.UUID        `json:"voucher_id,omitempty"`
	TotalAmount            decimal.Decimal   `json:"total_amount"`
	Currency               string            `json:"currency"`
	Status                 string            `json:"status"`
	RedeemPoints           int64             `json:"redeem_points"`
	PaymentMethod          string            `json:"payment_method,omitempty"`
	TransactionID          string            `json:"transaction_id,omitempty"`
	PaymentCompletedAt     string            `json:"payment_completed_at,omitempty"`
	PaymentAmount          *decimal.Decimal  `json:"payment_amount,omitempty"`
	PaymentGatewayResponse datatypes.JSON    `json:"payment_gateway_response,omitempty"`
	CreatedAt              string            `json:"created_at"`
}

func NewProductResponse(p *dbm.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		Kind:         string(p.Kind),
		Price:        p.Price,
		IsDiscounted: p.IsDiscounted,
		CoverKey:     p.CoverKey,
	}
}

func NewOrderResponse(o *dbm.Order) OrderResponse {
	products := make([]ProductResponse, 0, len(o.Products))
	for i := range o.Products {
		products = append(products, NewProductResponse(&o.Products[i]))
	}

	var paid *decimal.Decimal
	if o.PaymentAmount.Valid {
		v := o.PaymentAmount.Decimal
		paid = &v
	}

	return OrderResponse{
		ID:                     o.ID,
		Identifier:             o.Identifier,
		UserID:                 o.UserID,
		Products:               products,
		VoucherID:              o.VoucherID,
		TotalAmount:            o.TotalAmount,
		Currency:               o.Currency,
		Status:                 string(o.Status),
		RedeemPoints:           o.RedeemPoints,
		PaymentMethod:          o.PaymentMethod,
		TransactionID:          o.TransactionID,
		PaymentCompletedAt:     utils.UnixPtrToRFC3339(o.PaymentCompletedAt),
		PaymentAmount:          paid,
		PaymentGatewayResponse: o.PaymentGatewayResponse,
		CreatedAt:              utils.FormatRFC3339(utils.FromUnixSeconds(o.CreatedAt)),
	}
}

type CartResponse struct {
	UserID    string            `json:"user_id"`
	Products  []ProductResponse `json:"products"`
	Total     decimal.Decimal   `json:"total"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

type PresignUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}
