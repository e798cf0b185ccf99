package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	dbm "bookstore/internal/models/db_models"
	"bookstore/pkg/utils"
)

type BalanceResponse struct {
	WalletID uuid.UUID       `json:"wallet_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	IsActive bool            `json:"is_active"`
}

type WalletTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Metadata      datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type TopUpResponse struct {
	Transaction WalletTransactionResponse `json:"transaction"`
	RedirectURL string                    `json:"redirect_url"`
}

func NewBalanceResponse(w *dbm.Wallet) BalanceResponse {
	return BalanceResponse{
		WalletID: w.ID,
		Balance:  w.Balance,
		Currency: w.Currency,
		IsActive: w.IsActive,
	}
}

func NewWalletTransactionResponse(t *dbm.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:            t.ID,
		Amount:        t.Amount,
		Type:          string(t.Type),
		Status:        string(t.Status),
		Description:   t.Description,
		Reference:     t.Reference,
		OrderID:       t.OrderID,
		TransactionID: t.TransactionID,
		Metadata:      t.Metadata,
		CreatedAt:     utils.FormatRFC3339(utils.FromUnixSeconds(t.CreatedAt)),
	}
}
