package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "bookstore/internal/models/db_models"
)

type ReadProgressRepository interface {
	WithTx(tx *gorm.DB) ReadProgressRepository
	// CreateMissing grants the products to the user at 0%, leaving
	// existing rows untouched.
	CreateMissing(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}

type readProgressRepository struct {
	db *gorm.DB
}

func NewReadProgressRepository(db *gorm.DB) ReadProgressRepository {
	return &readProgressRepository{db: db}
}

func (r *readProgressRepository) WithTx(tx *gorm.DB) ReadProgressRepository {
	if tx == nil {
		return r
	}
	return &readProgressRepository{db: tx}
}

func (r *readProgressRepository) CreateMissing(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	rows := make([]dbm.ReadProgress, 0, len(productIDs))
	for _, pid := range productIDs {
		rows = append(rows, dbm.ReadProgress{UserID: userID, ProductID: pid, Progress: 0})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}
