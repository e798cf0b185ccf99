package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

type Order struct {
	BaseModel
	// Identifier is the public order number sent to the gateway as pg_order_id.
	Identifier string     `gorm:"size:16;uniqueIndex;not null"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	Products   []Product  `gorm:"many2many:order_products"`
	VoucherID  *uuid.UUID `gorm:"type:uuid;index"`

	TotalAmount  decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency     string          `gorm:"size:3;not null"`
	Status       OrderStatus     `gorm:"size:16;index;not null;default:pending"`
	RedeemPoints int64           `gorm:"not null;default:0"`

	// Payment fields, filled by the result callback (unix seconds)
	PaymentMethod          string
	TransactionID          string `gorm:"index"`
	PaymentCompletedAt     *int64
	PaymentAmount          decimal.NullDecimal `gorm:"type:numeric(20,2)"`
	PaymentGatewayResponse datatypes.JSON      `gorm:"type:jsonb;default:'{}'"`
	SettledAt              *int64

	Voucher *DiscountVoucher `gorm:"foreignKey:VoucherID"`
}

// ProductIDs returns the ids of the purchased products.
func (o *Order) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	return ids
}
