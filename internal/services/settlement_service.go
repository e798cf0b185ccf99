package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bookstore/internal/infra"
	dbm "bookstore/internal/models/db_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/utils"
)

type SettlementConfig struct {
	LockTTL        time.Duration
	Tolerance      decimal.Decimal
	LoyaltyDivisor decimal.Decimal
}

// SettlementInput is the confirmed payment being applied to an order.
type SettlementInput struct {
	TransactionID string
	PaymentMethod string
	PaymentAmount decimal.Decimal
	Payload       datatypes.JSON
	// WalletCharge debits the order total from the user's wallet in the
	// same transaction that completes the order.
	WalletCharge bool
}

type SettlementService interface {
	// Settle completes a pending order and applies its side effects. It
	// returns false when the order had already left pending.
	Settle(ctx context.Context, order *dbm.Order, in SettlementInput) (bool, error)
}

type settlementService struct {
	txr      infra.Transactor
	orders   repositories.OrderRepository
	progress repositories.ReadProgressRepository
	vouchers repositories.VoucherRepository
	carts    repositories.CartRepository
	wallets  WalletService
	events   infra.EventPublisher
	locker   infra.Locker
	cfg      SettlementConfig
	log      *zap.Logger
}

func NewSettlementService(
	txr infra.Transactor,
	orders repositories.OrderRepository,
	progress repositories.ReadProgressRepository,
	vouchers repositories.VoucherRepository,
	carts repositories.CartRepository,
	wallets WalletService,
	events infra.EventPublisher,
	locker infra.Locker,
	cfg SettlementConfig,
	log *zap.Logger,
) SettlementService {
	if cfg.LoyaltyDivisor.IsZero() {
		cfg.LoyaltyDivisor = decimal.NewFromInt(100)
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return &settlementService{
		txr:      txr,
		orders:   orders,
		progress: progress,
		vouchers: vouchers,
		carts:    carts,
		wallets:  wallets,
		events:   events,
		locker:   locker,
		cfg:      cfg,
		log:      log,
	}
}

func (s *settlementService) Settle(ctx context.Context, order *dbm.Order, in SettlementInput) (bool, error) {
	log := s.log.With(
		zap.String("order_id", order.ID.String()),
		zap.String("identifier", order.Identifier))

	lockKey := "settlement:" + order.ID.String()
	token, locked, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
	switch {
	case err != nil:
		// the conditional status update still guards against double settlement
		log.Warn("settlement lock unavailable", zap.Error(err))
	case !locked:
		return false, utils.ErrSettlementInProgress
	default:
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
				log.Warn("settlement lock release failed", zap.Error(err))
			}
		}()
	}

	if diff := order.TotalAmount.Sub(in.PaymentAmount).Abs(); diff.GreaterThan(s.cfg.Tolerance) {
		log.Warn("payment amount differs from order total",
			zap.String("total", order.TotalAmount.String()),
			zap.String("paid", in.PaymentAmount.String()))
	}

	now := utils.NowUnixSeconds()
	applied := false
	err = s.txr.WithinTransaction(ctx, func(tx *gorm.DB) error {
		ok, err := s.orders.WithTx(tx).MarkCompleted(ctx, order.ID, repositories.PaymentRecord{
			TransactionID: in.TransactionID,
			PaymentMethod: in.PaymentMethod,
			PaymentAmount: in.PaymentAmount,
			CompletedAt:   now,
			Payload:       in.Payload,
		})
		if err != nil {
			return fmt.Errorf("%w: complete order: %v", utils.ErrDatabaseError, err)
		}
		if !ok {
			return nil
		}
		applied = true

		if in.WalletCharge && order.TotalAmount.IsPositive() {
			if _, _, err := s.wallets.DebitWithin(ctx, tx, DebitInput{
				UserID:      order.UserID,
				Currency:    order.Currency,
				Amount:      order.TotalAmount,
				OrderID:     &order.ID,
				Description: "Order #" + order.Identifier,
				Reference:   "pay:" + order.Identifier,
			}); err != nil {
				return err
			}
		}

		if err := s.progress.WithTx(tx).CreateMissing(ctx, order.UserID, order.ProductIDs()); err != nil {
			return fmt.Errorf("%w: grant products: %v", utils.ErrDatabaseError, err)
		}

		if order.RedeemPoints > 0 {
			err := s.wallets.RedeemPoints(ctx, tx, order.UserID, order.RedeemPoints, order.ID, "redeem:"+order.Identifier)
			if errors.Is(err, utils.ErrInsufficientFunds) {
				log.Warn("not enough loyalty points to redeem, skipped", zap.Int64("points", order.RedeemPoints))
			} else if err != nil {
				return err
			}
		}

		if order.VoucherID != nil {
			counted, err := s.vouchers.WithTx(tx).IncrementActivation(ctx, *order.VoucherID)
			if err != nil {
				return fmt.Errorf("%w: activate voucher: %v", utils.ErrDatabaseError, err)
			}
			if !counted {
				log.Warn("voucher exhausted or removed before settlement, activation skipped",
					zap.String("voucher_id", order.VoucherID.String()))
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !applied {
		log.Info("order already settled, nothing applied", zap.String("status", string(order.Status)))
		return false, nil
	}

	order.Status = dbm.OrderStatusCompleted
	order.TransactionID = in.TransactionID
	order.PaymentMethod = in.PaymentMethod
	order.PaymentAmount = decimal.NewNullDecimal(in.PaymentAmount)
	order.PaymentCompletedAt = &now
	order.PaymentGatewayResponse = in.Payload
	order.SettledAt = &now

	s.afterSettlement(ctx, order, log)

	log.Info("order settled",
		zap.String("payment_method", in.PaymentMethod),
		zap.String("amount", in.PaymentAmount.String()))
	return true, nil
}

// afterSettlement runs the post-commit hooks. Failures are logged only.
func (s *settlementService) afterSettlement(ctx context.Context, order *dbm.Order, log *zap.Logger) {
	if err := s.carts.DeleteCart(ctx, order.UserID.String()); err != nil {
		log.Warn("clear cart failed", zap.Error(err))
	}

	paid := order.PaymentAmount.Decimal
	if points := paid.Div(s.cfg.LoyaltyDivisor).Floor().IntPart(); points > 0 {
		if err := s.wallets.EarnPoints(ctx, order.UserID, points, order.ID, "earn:"+order.Identifier); err != nil {
			log.Warn("loyalty credit failed", zap.Int64("points", points), zap.Error(err))
		}
	}

	err := s.events.Publish(ctx, infra.EventOrderCompleted, map[string]interface{}{
		"order_id":    order.ID.String(),
		"identifier":  order.Identifier,
		"user_id":     order.UserID.String(),
		"amount":      paid.String(),
		"currency":    order.Currency,
		"product_ids": order.ProductIDs(),
	})
	if err != nil {
		log.Warn("publish order event failed", zap.Error(err))
	}
}
