package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
)

var (
	OrderSearchFields = []SearchField{
		{Column: "identifier"},
		{Column: "transaction_id"},
		{Column: "payment_method"},
	}
	OrderSortColumns = map[string]string{
		"createdAt":          "created_at",
		"created_at":         "created_at",
		"totalAmount":        "total_amount",
		"total_amount":       "total_amount",
		"status":             "status",
		"identifier":         "identifier",
		"paymentCompletedAt": "payment_completed_at",
	}
)

// PaymentRecord is what the result callback writes onto a settled order.
type PaymentRecord struct {
	TransactionID string
	PaymentMethod string
	PaymentAmount decimal.Decimal
	CompletedAt   int64
	Payload       datatypes.JSON
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	Create(ctx context.Context, order *dbm.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.Order, error)
	FindByIdentifier(ctx context.Context, identifier string) (*dbm.Order, error)
	ExistsIdentifier(ctx context.Context, identifier string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// MarkCompleted and MarkFailed only touch pending orders; false means
	// the order had already left pending.
	MarkCompleted(ctx context.Context, id uuid.UUID, rec PaymentRecord) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, payload datatypes.JSON) (bool, error)

	List(ctx context.Context, filter QueryFilter, status string, page, limit int) ([]dbm.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *dbm.Order) error {
	// products already exist, only the join rows are written
	return r.db.WithContext(ctx).Omit("Products.*").Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		First(&order, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIdentifier(ctx context.Context, identifier string) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		First(&order, "identifier = ?", identifier).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ExistsIdentifier(ctx context.Context, identifier string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("identifier = ?", identifier).
		Count(&n).Error
	return n > 0, err
}

func (r *orderRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) MarkCompleted(ctx context.Context, id uuid.UUID, rec PaymentRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("id = ? AND status = ?", id, dbm.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":                   dbm.OrderStatusCompleted,
			"transaction_id":           rec.TransactionID,
			"payment_method":           rec.PaymentMethod,
			"payment_amount":           rec.PaymentAmount,
			"payment_completed_at":     rec.CompletedAt,
			"payment_gateway_response": rec.Payload,
			"settled_at":               rec.CompletedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) MarkFailed(ctx context.Context, id uuid.UUID, payload datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("id = ? AND status = ?", id, dbm.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":                   dbm.OrderStatusFailed,
			"payment_gateway_response": payload,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) List(ctx context.Context, filter QueryFilter, status string, page, limit int) ([]dbm.Order, int64, error) {
	byStatus := func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Scopes(byStatus, filter.FilterScope()).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).
		Preload("Products").
		Scopes(byStatus, filter.Scope())
	if filter.Sort == "" {
		q = q.Order("created_at DESC")
	}

	var orders []dbm.Order
	err = q.Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
