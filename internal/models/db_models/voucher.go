package db_models

import "github.com/shopspring/decimal"

type DiscountVoucher struct {
	BaseModel
	Code            string `gorm:"size:32;uniqueIndex;not null"`
	DiscountPercent int    `gorm:"not null;check:chk_voucher_percent,discount_percent BETWEEN 1 AND 100"`
	ActivationLimit int    `gorm:"not null;default:0"` // 0 = unlimited
	ActivationCount int    `gorm:"not null;default:0"`
	IsActive        bool   `gorm:"not null;default:true"`
	ExpiresAt       *int64
}

// Usable reports whether the voucher is active and not expired at now.
func (v *DiscountVoucher) Usable(now int64) bool {
	if !v.IsActive {
		return false
	}
	return v.ExpiresAt == nil || *v.ExpiresAt > now
}

func (v *DiscountVoucher) LimitReached() bool {
	return v.ActivationLimit > 0 && v.ActivationCount >= v.ActivationLimit
}

// Apply returns amount reduced by the voucher percentage, rounded to cents.
func (v *DiscountVoucher) Apply(amount decimal.Decimal) decimal.Decimal {
	discount := amount.Mul(decimal.NewFromInt(int64(v.DiscountPercent))).Div(decimal.NewFromInt(100)).Round(2)
	return amount.Sub(discount)
}
