package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalUsers(ctx context.Context) (int64, error)
	CountBuyers(ctx context.Context, start, end time.Time) (int64, error)
	StatusMix(ctx context.Context, start, end time.Time) ([]StatusRow, error)
	WalletFloat(ctx context.Context, currency string) (decimal.Decimal, error)

	// Time series
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	OrdersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketCount, error)

	// Top products
	TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductRow, error)

	// Recent payments
	RecentPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time       `gorm:"column:bucket"`
	Sum    decimal.Decimal `gorm:"column:sum"`
}

type BucketCount struct {
	Bucket time.Time `gorm:"column:bucket"`
	Count  int64     `gorm:"column:count"`
}

type StatusRow struct {
	Status string          `gorm:"column:status"`
	Count  int64           `gorm:"column:count"`
	Amount decimal.Decimal `gorm:"column:amount"`
}

type TopProductRow struct {
	ProductID string          `gorm:"column:product_id"`
	Title     []byte          `gorm:"column:title"`
	Sold      int64           `gorm:"column:sold"`
	Revenue   decimal.Decimal `gorm:"column:revenue"`
}

type RecentPaymentRow struct {
	ID            string          `gorm:"column:id"`
	Identifier    string          `gorm:"column:identifier"`
	PaidAt        *time.Time      `gorm:"column:paid_at"`
	Amount        decimal.Decimal `gorm:"column:amount"`
	Currency      string          `gorm:"column:currency"`
	PaymentMethod string          `gorm:"column:payment_method"`
	TransactionID string          `gorm:"column:transaction_id"`
	UserEmail     string          `gorm:"column:email"`
}

// ---------- Helpers ----------
func dateTrunc(tz string, unixColumn string) string {
	// unixColumn holds UNIX seconds; convert to timestamptz, then truncate
	// in the requested timezone.
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

func truncArgs(interval, tz string) []interface{} {
	if tz == "" {
		return []interface{}{interval}
	}
	return []interface{}{interval, tz}
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.User{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountBuyers(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("status = ?", dbm.OrderStatusCompleted).
		Where("payment_completed_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Distinct("user_id").
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) StatusMix(ctx context.Context, start, end time.Time) ([]StatusRow, error) {
	var rows []StatusRow
	err := r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("status").
		Order("status ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) WalletFloat(ctx context.Context, currency string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&dbm.Wallet{}).
		Select("COALESCE(SUM(balance), 0)").
		Where("currency = ?", currency).
		Scan(&sum).Error
	return sum, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	truncExpr := dateTrunc(tz, "payment_completed_at")
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(truncExpr+" AS bucket, COALESCE(SUM(payment_amount), 0) AS sum", truncArgs(interval, tz)...).
		Where("status = ?", dbm.OrderStatusCompleted).
		Where("payment_completed_at IS NOT NULL").
		Where("payment_completed_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Where("deleted_at IS NULL").
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) OrdersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketCount, error) {
	var rows []BucketCount
	truncExpr := dateTrunc(tz, "created_at")
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(truncExpr+" AS bucket, COUNT(*) AS count", truncArgs(interval, tz)...).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Where("deleted_at IS NULL").
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

// ---------- Top products ----------
func (r *dashboardRepository) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.db.WithContext(ctx).
		Table("order_products op").
		Select(`
			p.id AS product_id,
			p.title AS title,
			COUNT(*) AS sold,
			COALESCE(SUM(p.price), 0) AS revenue`).
		Joins("JOIN orders o ON o.id = op.order_id").
		Joins("JOIN products p ON p.id = op.product_id").
		Where("o.status = ?", dbm.OrderStatusCompleted).
		Where("o.payment_completed_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("p.id, p.title").
		Order("sold DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Recent payments ----------
func (r *dashboardRepository) RecentPayments(ctx context.Context, limit int) ([]RecentPaymentRow, error) {
	var rows []RecentPaymentRow
	// Join users for email
	err := r.db.WithContext(ctx).
		Table("orders o").
		Select(`
			o.id,
			o.identifier,
			to_timestamp(o.payment_completed_at) AT TIME ZONE 'UTC' AS paid_at,
			o.payment_amount AS amount,
			o.currency,
			o.payment_method,
			o.transaction_id,
			u.email`).
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Where("o.status = ?", dbm.OrderStatusCompleted).
		Where("o.payment_completed_at IS NOT NULL").
		Order("o.payment_completed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
