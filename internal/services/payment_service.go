package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "bookstore/internal/models/db_models"
	reqm "bookstore/internal/models/request_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/freedompay"
	"bookstore/pkg/utils"
)

const providerName = "freedompay"

var errPointsSpent = fmt.Errorf("%w: loyalty points already spent", utils.ErrInsufficientFunds)

type PaymentConfig struct {
	CheckURL       string
	ResultURL      string
	TopUpResultURL string
	SuccessURL     string
}

type PaymentService interface {
	InitOrderPayment(ctx context.Context, userID, orderID uuid.UUID) (*resp.PaymentInitResponse, error)
	PayWithWallet(ctx context.Context, userID, orderID uuid.UUID) (*dbm.Order, error)
	GetPaymentStatus(ctx context.Context, userID, orderID uuid.UUID, admin bool) (*resp.PaymentStatusResponse, error)

	// Gateway callbacks. They never fail: every outcome is a signed reply.
	ProcessCheckRequest(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply
	ProcessResultRequest(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply
	ProcessTopUpResult(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply

	RedirectStatus(ctx context.Context, outcome string, cb reqm.GatewayCallback) *resp.PaymentRedirectResponse
}

type paymentService struct {
	orders     repositories.OrderRepository
	users      repositories.UserRepository
	vouchers   repositories.VoucherRepository
	wallets    WalletService
	settlement SettlementService
	gateway    PaymentGateway
	signer     freedompay.Signer
	cfg        PaymentConfig
	log        *zap.Logger

	checkScript  string
	resultScript string
	topUpScript  string
}

func NewPaymentService(
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	vouchers repositories.VoucherRepository,
	wallets WalletService,
	settlement SettlementService,
	gateway PaymentGateway,
	signer freedompay.Signer,
	cfg PaymentConfig,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		orders:       orders,
		users:        users,
		vouchers:     vouchers,
		wallets:      wallets,
		settlement:   settlement,
		gateway:      gateway,
		signer:       signer,
		cfg:          cfg,
		log:          log,
		checkScript:  freedompay.ScriptName(cfg.CheckURL),
		resultScript: freedompay.ScriptName(cfg.ResultURL),
		topUpScript:  freedompay.ScriptName(cfg.TopUpResultURL),
	}
}

func isTopUpReference(id string) bool {
	return strings.HasPrefix(id, topUpPrefix)
}

// payableOrder loads an order owned by userID that still awaits payment and
// whose discounts are still available.
func (p *paymentService) payableOrder(ctx context.Context, userID, orderID uuid.UUID) (*dbm.Order, error) {
	order, err := p.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil || order.UserID != userID {
		return nil, utils.ErrOrderNotFound
	}
	if order.Status != dbm.OrderStatusPending {
		return nil, utils.ErrOrderNotPending
	}
	if err := p.checkDiscounts(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (p *paymentService) InitOrderPayment(ctx context.Context, userID, orderID uuid.UUID) (*resp.PaymentInitResponse, error) {
	order, err := p.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	// fully covered by voucher and points, nothing to charge
	if !order.TotalAmount.IsPositive() {
		if _, err := p.settleFree(ctx, order); err != nil {
			return nil, err
		}
		return &resp.PaymentInitResponse{
			OrderID:     order.ID,
			Identifier:  order.Identifier,
			Amount:      order.TotalAmount,
			Currency:    order.Currency,
			RedirectURL: p.cfg.SuccessURL,
			Provider:    "none",
		}, nil
	}

	req := freedompay.InitRequest{
		OrderID:     order.Identifier,
		Amount:      order.TotalAmount,
		Description: "Order #" + order.Identifier,
	}
	if user, err := p.users.FindById(ctx, userID); err != nil {
		p.log.Warn("payment init: user lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else if user != nil {
		req.UserPhone = user.Phone
		req.UserEmail = user.Email
	}

	started, err := p.gateway.InitPayment(ctx, req)
	if err != nil {
		p.log.Warn("payment init failed", zap.String("identifier", order.Identifier), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", utils.ErrExternalService, err)
	}

	p.log.Info("payment initialised",
		zap.String("identifier", order.Identifier),
		zap.String("payment_id", started.PaymentID))

	return &resp.PaymentInitResponse{
		OrderID:     order.ID,
		Identifier:  order.Identifier,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		PaymentID:   started.PaymentID,
		RedirectURL: started.RedirectURL,
		Provider:    providerName,
	}, nil
}

func (p *paymentService) settleFree(ctx context.Context, order *dbm.Order) (*dbm.Order, error) {
	ok, err := p.settlement.Settle(ctx, order, SettlementInput{
		TransactionID: "free:" + order.Identifier,
		PaymentMethod: "free",
		PaymentAmount: decimal.Zero,
		Payload:       jsonRaw(map[string]string{"source": "free"}),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrOrderNotPending
	}
	return order, nil
}

func (p *paymentService) PayWithWallet(ctx context.Context, userID, orderID uuid.UUID) (*dbm.Order, error) {
	order, err := p.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.TotalAmount.IsPositive() {
		return p.settleFree(ctx, order)
	}

	ok, err := p.settlement.Settle(ctx, order, SettlementInput{
		TransactionID: "pay:" + order.Identifier,
		PaymentMethod: "wallet",
		PaymentAmount: order.TotalAmount,
		Payload:       jsonRaw(map[string]string{"source": "wallet"}),
		WalletCharge:  true,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrOrderNotPending
	}
	return order, nil
}

func (p *paymentService) GetPaymentStatus(ctx context.Context, userID, orderID uuid.UUID, admin bool) (*resp.PaymentStatusResponse, error) {
	order, err := p.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", utils.ErrDatabaseError, err)
	}
	if order == nil || (!admin && order.UserID != userID) {
		return nil, utils.ErrOrderNotFound
	}

	out := &resp.PaymentStatusResponse{
		OrderID:            order.ID,
		Identifier:         order.Identifier,
		Status:             string(order.Status),
		TotalAmount:        order.TotalAmount,
		PaymentMethod:      order.PaymentMethod,
		TransactionID:      order.TransactionID,
		PaymentCompletedAt: utils.UnixPtrToRFC3339(order.PaymentCompletedAt),
	}
	if order.PaymentAmount.Valid {
		paid := order.PaymentAmount.Decimal
		out.PaymentAmount = &paid
	}
	return out, nil
}

// ProcessCheckRequest answers the gateway's pre-authorisation check.
func (p *paymentService) ProcessCheckRequest(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply {
	script := p.checkScript
	orderID := cb.OrderID()
	log := p.log.With(zap.String("callback", "check"), zap.String("pg_order_id", orderID))

	if !p.signer.Verify(cb, script) {
		log.Warn("callback signature mismatch")
		return p.signer.Reply(freedompay.StatusRejected, "invalid signature", script)
	}
	if orderID == "" {
		return p.signer.Reply(freedompay.StatusRejected, "missing pg_order_id", script)
	}
	amount, err := cb.Amount()
	if err != nil {
		return p.signer.Reply(freedompay.StatusRejected, "invalid amount", script)
	}

	if isTopUpReference(orderID) {
		txn, err := p.wallets.FindPendingTopUp(ctx, orderID)
		if err != nil {
			log.Error("check: top-up lookup failed", zap.Error(err))
			return p.signer.Reply(freedompay.StatusError, "internal error", script)
		}
		if txn == nil {
			return p.signer.Reply(freedompay.StatusRejected, "transaction not found", script)
		}
		if !amount.Equal(txn.Amount) {
			log.Warn("check: top-up amount mismatch", zap.String("expected", txn.Amount.String()), zap.String("got", amount.String()))
			return p.signer.Reply(freedompay.StatusRejected, "amount mismatch", script)
		}
		return p.signer.Reply(freedompay.StatusOK, "top-up is available for payment", script)
	}

	order, err := p.orders.FindByIdentifier(ctx, orderID)
	if err != nil {
		log.Error("check: order lookup failed", zap.Error(err))
		return p.signer.Reply(freedompay.StatusError, "internal error", script)
	}
	if order == nil {
		return p.signer.Reply(freedompay.StatusRejected, "order not found", script)
	}
	if order.Status != dbm.OrderStatusPending {
		return p.signer.Reply(freedompay.StatusRejected, "order is not awaiting payment", script)
	}
	if !amount.Equal(order.TotalAmount) {
		log.Warn("check: amount mismatch", zap.String("expected", order.TotalAmount.String()), zap.String("got", amount.String()))
		return p.signer.Reply(freedompay.StatusRejected, "amount mismatch", script)
	}

	if err := p.checkDiscounts(ctx, order); err != nil {
		if errors.Is(err, utils.ErrDatabaseError) {
			log.Error("check: discount lookup failed", zap.Error(err))
			return p.signer.Reply(freedompay.StatusError, "internal error", script)
		}
		log.Info("check: discount no longer available", zap.Error(err))
		return p.signer.Reply(freedompay.StatusRejected, err.Error(), script)
	}
	return p.signer.Reply(freedompay.StatusOK, "order is available for payment", script)
}

// checkDiscounts re-checks the points and voucher priced into a pending
// order. Neither is reserved before settlement.
func (p *paymentService) checkDiscounts(ctx context.Context, order *dbm.Order) error {
	if order.RedeemPoints > 0 {
		points, err := p.wallets.LoyaltyBalance(ctx, order.UserID)
		if err != nil {
			return err
		}
		if points.LessThan(decimal.NewFromInt(order.RedeemPoints)) {
			return errPointsSpent
		}
	}

	if order.VoucherID != nil {
		voucher, err := p.vouchers.FindByID(ctx, *order.VoucherID)
		if err != nil {
			return fmt.Errorf("%w: find voucher: %v", utils.ErrDatabaseError, err)
		}
		switch {
		case voucher == nil:
			return utils.ErrVoucherNotFound
		case !voucher.Usable(utils.NowUnixSeconds()):
			return utils.ErrVoucherInactive
		case voucher.LimitReached():
			return utils.ErrVoucherLimitReached
		}
	}
	return nil
}

// ProcessResultRequest applies the gateway's authoritative payment result.
func (p *paymentService) ProcessResultRequest(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply {
	script := p.resultScript
	orderID := cb.OrderID()
	log := p.log.With(zap.String("callback", "result"), zap.String("pg_order_id", orderID))

	if !p.signer.Verify(cb, script) {
		log.Warn("callback signature mismatch")
		return p.signer.Reply(freedompay.StatusRejected, "invalid signature", script)
	}
	if isTopUpReference(orderID) {
		return p.completeTopUp(ctx, cb, script)
	}

	order, err := p.orders.FindByIdentifier(ctx, orderID)
	if err != nil {
		log.Error("result: order lookup failed", zap.Error(err))
		return p.signer.Reply(freedompay.StatusError, "internal error", script)
	}
	if order == nil {
		return p.signer.Reply(freedompay.StatusRejected, "order not found", script)
	}
	if order.Status.IsTerminal() {
		log.Info("result: order already processed", zap.String("status", string(order.Status)))
		return p.signer.Reply(freedompay.StatusOK, "already processed", script)
	}

	payload := jsonRaw(cb)

	if !cb.Succeeded() {
		ok, err := p.orders.MarkFailed(ctx, order.ID, payload)
		if err != nil {
			log.Error("result: mark failed", zap.Error(err))
			return p.signer.Reply(freedompay.StatusError, "internal error", script)
		}
		log.Info("payment failed",
			zap.Bool("transitioned", ok),
			zap.String("failure_code", cb.FailureCode()),
			zap.String("failure_description", cb.FailureDescription()))
		return p.signer.Reply(freedompay.StatusOK, "payment failure recorded", script)
	}

	paid, err := cb.Amount()
	if err != nil {
		log.Warn("result: unreadable pg_amount, using order total", zap.String("pg_amount", cb["pg_amount"]))
		paid = order.TotalAmount
	}

	_, err = p.settlement.Settle(ctx, order, SettlementInput{
		TransactionID: cb.PaymentID(),
		PaymentMethod: cb.PaymentMethod(),
		PaymentAmount: paid,
		Payload:       payload,
	})
	if err != nil {
		if errors.Is(err, utils.ErrSettlementInProgress) {
			return p.signer.Reply(freedompay.StatusError, "payment is being processed", script)
		}
		log.Error("result: settlement failed", zap.Error(err))
		return p.signer.Reply(freedompay.StatusError, "internal error", script)
	}
	return p.signer.Reply(freedompay.StatusOK, "payment accepted", script)
}

// ProcessTopUpResult is the result callback for wallet top-ups.
func (p *paymentService) ProcessTopUpResult(ctx context.Context, cb reqm.GatewayCallback) *freedompay.Reply {
	script := p.topUpScript
	if !p.signer.Verify(cb, script) {
		p.log.Warn("callback signature mismatch",
			zap.String("callback", "top-up"),
			zap.String("pg_order_id", cb.OrderID()))
		return p.signer.Reply(freedompay.StatusRejected, "invalid signature", script)
	}
	return p.completeTopUp(ctx, cb, script)
}

func (p *paymentService) completeTopUp(ctx context.Context, cb reqm.GatewayCallback, script string) *freedompay.Reply {
	reference := cb.OrderID()
	log := p.log.With(zap.String("callback", "top-up"), zap.String("reference", reference))

	status := dbm.WalletTxnFailed
	if cb.Succeeded() {
		status = dbm.WalletTxnCompleted
	}

	txn, err := p.wallets.CompleteTopUp(ctx, reference, status, cb.PaymentID())
	switch {
	case errors.Is(err, utils.ErrTransactionNotPending):
		log.Info("top-up already processed")
		return p.signer.Reply(freedompay.StatusOK, "already processed", script)
	case errors.Is(err, utils.ErrTransactionNotFound):
		return p.signer.Reply(freedompay.StatusRejected, "transaction not found", script)
	case err != nil:
		log.Error("top-up completion failed", zap.Error(err))
		return p.signer.Reply(freedompay.StatusError, "internal error", script)
	}

	if paid, err := cb.Amount(); err == nil && !paid.Equal(txn.Amount) {
		log.Warn("top-up amount differs from request", zap.String("expected", txn.Amount.String()), zap.String("paid", paid.String()))
	}
	if status == dbm.WalletTxnCompleted {
		return p.signer.Reply(freedompay.StatusOK, "top-up accepted", script)
	}
	return p.signer.Reply(freedompay.StatusOK, "payment failure recorded", script)
}

// RedirectStatus backs the success/failure landing pages. It is
// informational only.
func (p *paymentService) RedirectStatus(ctx context.Context, outcome string, cb reqm.GatewayCallback) *resp.PaymentRedirectResponse {
	out := &resp.PaymentRedirectResponse{
		Outcome:    outcome,
		Identifier: cb.OrderID(),
		Params:     cb,
	}
	if out.Identifier == "" || isTopUpReference(out.Identifier) {
		return out
	}

	order, err := p.orders.FindByIdentifier(ctx, out.Identifier)
	if err != nil {
		p.log.Warn("redirect: order lookup failed", zap.String("identifier", out.Identifier), zap.Error(err))
		return out
	}
	if order != nil {
		out.OrderStatus = string(order.Status)
	}
	return out
}
