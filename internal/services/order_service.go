package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dbm "bookstore/internal/models/db_models"
	"bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/utils"
)

const (
	identifierLength   = 8
	identifierAttempts = 5
)

var errIdentifierExhausted = errors.New("could not allocate a unique order identifier")

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req request_models.CreateOrderRequest) (*dbm.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dbm.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, req request_models.UpdateOrderRequest) (*dbm.Order, error)
	ListOrders(ctx context.Context, q request_models.ListQuery) (*resp.Page[resp.OrderResponse], error)
	OrderStats(ctx context.Context) ([]resp.StatusCount, error)
}

type orderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	vouchers  repositories.VoucherRepository
	carts     repositories.CartRepository
	dashboard repositories.DashboardRepository
	wallets   WalletService
	currency  string
	log       *zap.Logger
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	vouchers repositories.VoucherRepository,
	carts repositories.CartRepository,
	dashboard repositories.DashboardRepository,
	wallets WalletService,
	currency string,
	log *zap.Logger,
) OrderService {
	return &orderService{
		orders:    orders,
		products:  products,
		vouchers:  vouchers,
		carts:     carts,
		dashboard: dashboard,
		wallets:   wallets,
		currency:  currency,
		log:       log,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req request_models.CreateOrderRequest) (*dbm.Order, error) {
	ids, err := s.selectedProducts(ctx, userID, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: find products: %v", utils.ErrDatabaseError, err)
	}
	if len(products) != len(ids) {
		return nil, utils.ErrProductNotFound
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}

	if req.VoucherID != nil {
		for _, p := range products {
			if p.IsDiscounted {
				return nil, utils.ErrVoucherNotApplicable
			}
		}

		voucher, err := s.vouchers.FindByID(ctx, *req.VoucherID)
		if err != nil {
			return nil, fmt.Errorf("%w: find voucher: %v", utils.ErrDatabaseError, err)
		}
		if voucher == nil {
			return nil, utils.ErrVoucherNotFound
		}
		if !voucher.Usable(utils.NowUnixSeconds()) {
			return nil, utils.ErrVoucherInactive
		}
		if voucher.LimitReached() {
			return nil, utils.ErrVoucherLimitReached
		}
		total = voucher.Apply(total)
	}

	if req.RedeemPoints > 0 {
		points := decimal.NewFromInt(req.RedeemPoints)
		balance, err := s.wallets.LoyaltyBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(points) {
			return nil, utils.ErrInsufficientFunds
		}
		total = total.Sub(points)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	identifier, err := s.allocateIdentifier(ctx)
	if err != nil {
		return nil, err
	}

	order := &dbm.Order{
		Identifier:   identifier,
		UserID:       userID,
		Products:     products,
		VoucherID:    req.VoucherID,
		TotalAmount:  total,
		Currency:     s.currency,
		Status:       dbm.OrderStatusPending,
		RedeemPoints: req.RedeemPoints,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: create order: %v", utils.ErrDatabaseError, err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("identifier", identifier),
		zap.String("total", total.String()))
	return order, nil
}

// selectedProducts falls back to the user's cart and drops duplicates.
func (s *orderService) selectedProducts(ctx context.Context, userID uuid.UUID, requested []uuid.UUID) ([]uuid.UUID, error) {
	ids := requested
	if len(ids) == 0 {
		cart, err := s.carts.GetCart(ctx, userID.String())
		if err != nil {
			return nil, fmt.Errorf("%w: read cart: %v", utils.ErrStorageError, err)
		}
		if cart != nil {
			for _, raw := range cart.ProductIDs {
				id, err := uuid.Parse(raw)
				if err != nil {
					s.log.Warn("cart holds an invalid product id", zap.String("user_id", userID.String()), zap.String("product_id", raw))
					continue
				}
				ids = append(ids, id)
			}
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, utils.ErrEmptyOrder
	}
	return unique, nil
}

func (s *orderService) allocateIdentifier(ctx context.Context) (string, error) {
	for i := 0; i < identifierAttempts; i++ {
		candidate, err := utils.GenerateNumericCode(identifierLength)
		if err != nil {
			return "", err
		}
		taken, err := s.orders.ExistsIdentifier(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: check identifier: %v", utils.ErrDatabaseError, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errIdentifierExhausted
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dbm.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id uuid.UUID, req request_models.UpdateOrderRequest) (*dbm.Order, error) {
	fields := map[string]interface{}{}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if req.TransactionID != nil {
		fields["transaction_id"] = *req.TransactionID
	}
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, utils.ErrInvalidAmount
		}
		fields["total_amount"] = req.TotalAmount.Round(2)
	}
	if req.RedeemPoints != nil {
		fields["redeem_points"] = *req.RedeemPoints
	}

	if len(fields) > 0 {
		if err := s.orders.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrOrderNotFound
			}
			return nil, fmt.Errorf("%w: update order: %v", utils.ErrDatabaseError, err)
		}
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, q request_models.ListQuery) (*resp.Page[resp.OrderResponse], error) {
	q.Normalize()
	if err := validatePaging(q.Page, q.Limit); err != nil {
		return nil, err
	}
	switch dbm.OrderStatus(q.Status) {
	case "", dbm.OrderStatusPending, dbm.OrderStatusCompleted, dbm.OrderStatusFailed:
	default:
		return nil, utils.ErrInvalidFilter
	}

	filter := repositories.BuildQuery(q, repositories.OrderSearchFields, repositories.OrderSortColumns)
	orders, total, err := s.orders.List(ctx, filter, q.Status, q.Page, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", utils.ErrDatabaseError, err)
	}

	items := make([]resp.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, resp.NewOrderResponse(&orders[i]))
	}
	return &resp.Page[resp.OrderResponse]{Items: items, Page: q.Page, Limit: q.Limit, Total: total}, nil
}

func (s *orderService) OrderStats(ctx context.Context) ([]resp.StatusCount, error) {
	rows, err := s.dashboard.StatusMix(ctx, time.Unix(0, 0), time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: order stats: %v", utils.ErrDatabaseError, err)
	}
	out := make([]resp.StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, resp.StatusCount{Status: r.Status, Count: r.Count, Amount: r.Amount})
	}
	return out, nil
}
