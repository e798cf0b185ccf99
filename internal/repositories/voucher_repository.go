package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
)

type VoucherRepository interface {
	WithTx(tx *gorm.DB) VoucherRepository
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.DiscountVoucher, error)
	// IncrementActivation counts one use of the voucher unless its limit is
	// already reached. It reports false when nothing was counted.
	IncrementActivation(ctx context.Context, id uuid.UUID) (bool, error)
}

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) WithTx(tx *gorm.DB) VoucherRepository {
	if tx == nil {
		return r
	}
	return &voucherRepository{db: tx}
}

func (r *voucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.DiscountVoucher, error) {
	var v dbm.DiscountVoucher
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *voucherRepository) IncrementActivation(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.DiscountVoucher{}).
		Where("id = ? AND (activation_limit = 0 OR activation_count < activation_limit)", id).
		UpdateColumn("activation_count", gorm.Expr("activation_count + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
