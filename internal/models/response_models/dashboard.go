package response_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	CompletedOrders int64 `json:"completed_orders"`
	FailedOrders    int64 `json:"failed_orders"`
	TotalUsers      int64 `json:"total_users"`
	Buyers          int64 `json:"buyers"` // distinct users with a completed order in range

	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	SuccessRatePct    float64         `json:"success_rate_pct"` // completed / (completed + failed) * 100
	WalletFloat       decimal.Decimal `json:"wallet_float"`     // sum of top-up wallet balances
	PointsOutstanding decimal.Decimal `json:"points_outstanding"`
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

type CountPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type RevenueSeries struct {
	Currency string          `json:"currency"`
	Points   []SeriesPoint   `json:"points"`
	Total    decimal.Decimal `json:"total"`
}

type CountSeries struct {
	Points []CountPoint `json:"points"`
}

type StatusCount struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     datatypes.JSON  `json:"title"`
	Sold      int64           `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentPayment struct {
	OrderID       uuid.UUID       `json:"order_id"`
	Identifier    string          `json:"identifier"`
	PaidAt        *time.Time      `json:"paid_at"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	UserEmail     string          `json:"user_email"`
}

type DashboardReport struct {
	Range          TimeRange       `json:"range"`
	KPIs           KPIBlock        `json:"kpis"`
	Revenue        RevenueSeries   `json:"revenue"`
	Orders         CountSeries     `json:"orders"`
	StatusMix      []StatusCount   `json:"status_mix"`
	TopProducts    []TopProduct    `json:"top_products"`
	RecentPayments []RecentPayment `json:"recent_payments"`
}
