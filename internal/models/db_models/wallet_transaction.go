package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type WalletTxnType string

const (
	WalletTxnCredit WalletTxnType = "CREDIT"
	WalletTxnDebit  WalletTxnType = "DEBIT"
)

type WalletTxnStatus string

const (
	WalletTxnPending   WalletTxnStatus = "PENDING"
	WalletTxnCompleted WalletTxnStatus = "COMPLETED"
	WalletTxnFailed    WalletTxnStatus = "FAILED"
)

// WalletTransaction is one ledger line. Amount is signed: credits are
// positive, debits negative.
type WalletTransaction struct {
	BaseModel
	WalletID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Type        WalletTxnType   `gorm:"size:8;not null"`
	Status      WalletTxnStatus `gorm:"size:16;index;not null"`
	Description string

	// Reference is the idempotency key, and for top-ups the pg_order_id
	// the gateway echoes back in its callbacks.
	Reference     string     `gorm:"size:64;uniqueIndex;not null"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index"`
	TransactionID string     `gorm:"index"` // gateway pg_payment_id

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Wallet Wallet `gorm:"foreignKey:WalletID"`
}
