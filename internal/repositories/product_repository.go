package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
)

var (
	ProductSearchFields = []SearchField{
		{Column: "title", Multilingual: true},
		{Column: "author"},
	}
	ProductSortColumns = map[string]string{
		"price":      "price",
		"createdAt":  "created_at",
		"created_at": "created_at",
		"author":     "author",
	}
)

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dbm.Product, error)
	List(ctx context.Context, filter QueryFilter, kind string, page, limit int) ([]dbm.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindByIDs returns the published products among ids; missing ones are
// simply absent from the result.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dbm.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []dbm.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_published = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context, filter QueryFilter, kind string, page, limit int) ([]dbm.Product, int64, error) {
	published := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_published = ?", true)
		if kind != "" {
			db = db.Where("kind = ?", kind)
		}
		return db
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Product{}).
		Scopes(published, filter.FilterScope()).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Scopes(published, filter.Scope())
	if filter.Sort == "" {
		q = q.Order("created_at DESC")
	}

	var products []dbm.Product
	err = q.Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
