package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	dbm "bookstore/internal/models/db_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo            repositories.DashboardRepository
	currency        string
	loyaltyCurrency string
}

func NewDashboardService(repo repositories.DashboardRepository, currency, loyaltyCurrency string) DashboardService {
	return &dashboardService{repo: repo, currency: currency, loyaltyCurrency: loyaltyCurrency}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	switch out.Interval {
	case "day", "week", "month":
	default:
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	totalUsers, err := s.repo.CountTotalUsers(ctx)
	if err != nil {
		return nil, err
	}

	buyers, err := s.repo.CountBuyers(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	statusRows, err := s.repo.StatusMix(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	kpis := resp.KPIBlock{TotalUsers: totalUsers, Buyers: buyers}
	statusMix := make([]resp.StatusCount, 0, len(statusRows))
	for _, r := range statusRows {
		kpis.TotalOrders += r.Count
		switch dbm.OrderStatus(r.Status) {
		case dbm.OrderStatusPending:
			kpis.PendingOrders = r.Count
		case dbm.OrderStatusCompleted:
			kpis.CompletedOrders = r.Count
		case dbm.OrderStatusFailed:
			kpis.FailedOrders = r.Count
		}
		statusMix = append(statusMix, resp.StatusCount{Status: r.Status, Count: r.Count, Amount: r.Amount})
	}
	if settled := kpis.CompletedOrders + kpis.FailedOrders; settled > 0 {
		kpis.SuccessRatePct = float64(kpis.CompletedOrders) * 100.0 / float64(settled)
	}

	if kpis.WalletFloat, err = s.repo.WalletFloat(ctx, s.currency); err != nil {
		return nil, err
	}
	if kpis.PointsOutstanding, err = s.repo.WalletFloat(ctx, s.loyaltyCurrency); err != nil {
		return nil, err
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	revenuePoints := make([]resp.SeriesPoint, 0, len(revenueRows))
	totalRevenue := decimal.Zero
	for _, r := range revenueRows {
		revenuePoints = append(revenuePoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		totalRevenue = totalRevenue.Add(r.Sum)
	}
	kpis.Revenue = totalRevenue
	if kpis.CompletedOrders > 0 {
		kpis.AverageOrderValue = totalRevenue.Div(decimal.NewFromInt(kpis.CompletedOrders)).Round(2)
	}

	orderRows, err := s.repo.OrdersSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	orderPoints := make([]resp.CountPoint, 0, len(orderRows))
	for _, r := range orderRows {
		orderPoints = append(orderPoints, resp.CountPoint{Bucket: r.Bucket, Value: r.Count})
	}

	// ---------- Top products ----------
	productRows, err := s.repo.TopProducts(ctx, rng.Start, rng.End, 10)
	if err != nil {
		return nil, err
	}
	topProducts := make([]resp.TopProduct, 0, len(productRows))
	for _, r := range productRows {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, errors.New("invalid product UUID in top products")
		}
		topProducts = append(topProducts, resp.TopProduct{
			ProductID: id,
			Title:     datatypes.JSON(r.Title),
			Sold:      r.Sold,
			Revenue:   r.Revenue,
		})
	}

	// ---------- Recent payments ----------
	payRows, err := s.repo.RecentPayments(ctx, 10)
	if err != nil {
		return nil, err
	}
	recent := make([]resp.RecentPayment, 0, len(payRows))
	for _, r := range payRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, errors.New("invalid order UUID in recent payments")
		}
		recent = append(recent, resp.RecentPayment{
			OrderID:       id,
			Identifier:    r.Identifier,
			PaidAt:        r.PaidAt,
			Amount:        r.Amount,
			Currency:      r.Currency,
			PaymentMethod: r.PaymentMethod,
			TransactionID: r.TransactionID,
			UserEmail:     r.UserEmail,
		})
	}

	return &resp.DashboardReport{
		Range: rng,
		KPIs:  kpis,
		Revenue: resp.RevenueSeries{
			Currency: s.currency,
			Points:   revenuePoints,
			Total:    totalRevenue,
		},
		Orders:         resp.CountSeries{Points: orderPoints},
		StatusMix:      statusMix,
		TopProducts:    topProducts,
		RecentPayments: recent,
	}, nil
}
