package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	BaseModel
	UserID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallet_user_currency"`
	Currency string          `gorm:"size:3;not null;uniqueIndex:idx_wallet_user_currency"`
	Balance  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0;check:chk_wallet_balance_non_negative,balance >= 0"`
	IsActive bool            `gorm:"not null;default:true"`
}
