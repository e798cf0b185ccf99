package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "bookstore/internal/models/db_models"
)

type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository

	FindByUser(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error)
	// FindByUserForUpdate row-locks the wallet until the surrounding
	// transaction ends.
	FindByUserForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error)
	// Create inserts the wallet unless one already exists for the user and
	// currency.
	Create(ctx context.Context, wallet *dbm.Wallet) error
	AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error

	CreateTransaction(ctx context.Context, txn *dbm.WalletTransaction) error
	FindTransactionByReference(ctx context.Context, reference string) (*dbm.WalletTransaction, error)
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to dbm.WalletTxnStatus, externalID string) (bool, error)
	UpdateTransactionMetadata(ctx context.Context, id uuid.UUID, metadata datatypes.JSON) error
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]dbm.WalletTransaction, int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) WithTx(tx *gorm.DB) WalletRepository {
	if tx == nil {
		return r
	}
	return &walletRepository{db: tx}
}

func (r *walletRepository) FindByUser(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	return r.findByUser(r.db.WithContext(ctx), userID, currency)
}

func (r *walletRepository) FindByUserForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	return r.findByUser(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID, currency)
}

func (r *walletRepository) findByUser(q *gorm.DB, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	var w dbm.Wallet
	err := q.Where("user_id = ? AND currency = ?", userID, currency).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *walletRepository) Create(ctx context.Context, wallet *dbm.Wallet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoNothing: true,
		}).
		Create(wallet).Error
}

func (r *walletRepository) AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&dbm.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, txn *dbm.WalletTransaction) error {
	return r.db.WithContext(ctx).Omit("Wallet").Create(txn).Error
}

func (r *walletRepository) FindTransactionByReference(ctx context.Context, reference string) (*dbm.WalletTransaction, error) {
	var txn dbm.WalletTransaction
	err := r.db.WithContext(ctx).First(&txn, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *walletRepository) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, from, to dbm.WalletTxnStatus, externalID string) (bool, error) {
	fields := map[string]interface{}{"status": to}
	if externalID != "" {
		fields["transaction_id"] = externalID
	}
	res := r.db.WithContext(ctx).
		Model(&dbm.WalletTransaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *walletRepository) UpdateTransactionMetadata(ctx context.Context, id uuid.UUID, metadata datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&dbm.WalletTransaction{}).
		Where("id = ?", id).
		Update("metadata", metadata).Error
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]dbm.WalletTransaction, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&dbm.WalletTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var txns []dbm.WalletTransaction
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
