package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookstore/internal/infra"
	dbm "bookstore/internal/models/db_models"
	resp "bookstore/internal/models/response_models"
	"bookstore/internal/repositories"
	"bookstore/pkg/freedompay"
	"bookstore/pkg/utils"
)

const (
	topUpPrefix     = "W"
	debitPrefix     = "D"
	referenceLength = 15
)

type WalletConfig struct {
	Currency        string // top-up wallet
	LoyaltyCurrency string
	TopUpResultURL  string
}

// DebitInput describes a synchronous spend from an existing balance.
// Reference makes the debit idempotent.
type DebitInput struct {
	UserID      uuid.UUID
	Currency    string
	Amount      decimal.Decimal
	OrderID     *uuid.UUID
	Description string
	Reference   string
}

type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error)
	GetBalance(ctx context.Context, userID uuid.UUID, currency string) (*resp.BalanceResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) (*resp.Page[resp.WalletTransactionResponse], error)

	InitiateTopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*resp.TopUpResponse, error)
	FindPendingTopUp(ctx context.Context, reference string) (*dbm.WalletTransaction, error)
	CompleteTopUp(ctx context.Context, reference string, status dbm.WalletTxnStatus, externalID string) (*dbm.WalletTransaction, error)

	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID, description string) (*dbm.Wallet, *dbm.WalletTransaction, error)
	// DebitWithin runs the debit inside tx; a nil tx opens its own transaction.
	DebitWithin(ctx context.Context, tx *gorm.DB, in DebitInput) (*dbm.Wallet, *dbm.WalletTransaction, error)

	LoyaltyBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	RedeemPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, orderID uuid.UUID, reference string) error
	EarnPoints(ctx context.Context, userID uuid.UUID, points int64, orderID uuid.UUID, reference string) error
}

type walletService struct {
	wallets repositories.WalletRepository
	users   repositories.UserRepository
	gateway PaymentGateway
	txr     infra.Transactor
	cfg     WalletConfig
	log     *zap.Logger
}

func NewWalletService(
	wallets repositories.WalletRepository,
	users repositories.UserRepository,
	gateway PaymentGateway,
	txr infra.Transactor,
	cfg WalletConfig,
	log *zap.Logger,
) WalletService {
	return &walletService{
		wallets: wallets,
		users:   users,
		gateway: gateway,
		txr:     txr,
		cfg:     cfg,
		log:     log,
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	if currency == "" {
		currency = s.cfg.Currency
	}
	return getOrCreateWallet(ctx, s.wallets, userID, currency)
}

func getOrCreateWallet(ctx context.Context, wallets repositories.WalletRepository, userID uuid.UUID, currency string) (*dbm.Wallet, error) {
	w, err := wallets.FindByUser(ctx, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: find wallet: %v", utils.ErrDatabaseError, err)
	}
	if w != nil {
		return w, nil
	}

	// a concurrent creator wins the unique index; read back whatever exists
	if err := wallets.Create(ctx, &dbm.Wallet{
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.Zero,
		IsActive: true,
	}); err != nil {
		return nil, fmt.Errorf("%w: create wallet: %v", utils.ErrDatabaseError, err)
	}

	w, err = wallets.FindByUser(ctx, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: find wallet: %v", utils.ErrDatabaseError, err)
	}
	if w == nil {
		return nil, utils.ErrWalletNotFound
	}
	return w, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID uuid.UUID, currency string) (*resp.BalanceResponse, error) {
	w, err := s.GetOrCreateWallet(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	out := resp.NewBalanceResponse(w)
	return &out, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) (*resp.Page[resp.WalletTransactionResponse], error) {
	if err := validatePaging(page, limit); err != nil {
		return nil, err
	}

	txns, total, err := s.wallets.ListTransactions(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list wallet transactions: %v", utils.ErrDatabaseError, err)
	}

	items := make([]resp.WalletTransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, resp.NewWalletTransactionResponse(&txns[i]))
	}
	return &resp.Page[resp.WalletTransactionResponse]{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *walletService) InitiateTopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*resp.TopUpResponse, error) {
	if !amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}
	amount = amount.Round(2)

	w, err := s.GetOrCreateWallet(ctx, userID, s.cfg.Currency)
	if err != nil {
		return nil, err
	}

	reference, err := utils.GenerateReference(topUpPrefix, referenceLength)
	if err != nil {
		return nil, err
	}

	txn := &dbm.WalletTransaction{
		WalletID:    w.ID,
		UserID:      userID,
		Amount:      amount,
		Type:        dbm.WalletTxnCredit,
		Status:      dbm.WalletTxnPending,
		Description: "Wallet top-up",
		Reference:   reference,
		Metadata:    jsonRaw(map[string]any{"provider": "freedompay"}),
	}
	if err := s.wallets.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("%w: create top-up: %v", utils.ErrDatabaseError, err)
	}

	req := freedompay.InitRequest{
		OrderID:     reference,
		Amount:      amount,
		Description: "Wallet top-up " + reference,
		ResultURL:   s.cfg.TopUpResultURL,
	}
	if user, err := s.users.FindById(ctx, userID); err != nil {
		s.log.Warn("top-up: user lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
	} else if user != nil {
		req.UserPhone = user.Phone
		req.UserEmail = user.Email
	}

	started, err := s.gateway.InitPayment(ctx, req)
	if err != nil {
		if _, uerr := s.wallets.UpdateTransactionStatus(ctx, txn.ID, dbm.WalletTxnPending, dbm.WalletTxnFailed, ""); uerr != nil {
			s.log.Error("top-up: mark failed", zap.String("reference", reference), zap.Error(uerr))
		}
		s.log.Warn("top-up: gateway init failed", zap.String("reference", reference), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", utils.ErrExternalService, err)
	}

	txn.Metadata = jsonRaw(map[string]any{
		"provider":     "freedompay",
		"payment_id":   started.PaymentID,
		"redirect_url": started.RedirectURL,
	})
	if err := s.wallets.UpdateTransactionMetadata(ctx, txn.ID, txn.Metadata); err != nil {
		s.log.Warn("top-up: store gateway snapshot", zap.String("reference", reference), zap.Error(err))
	}

	return &resp.TopUpResponse{
		Transaction: resp.NewWalletTransactionResponse(txn),
		RedirectURL: started.RedirectURL,
	}, nil
}

// FindPendingTopUp returns the pending top-up credit for reference, or nil.
func (s *walletService) FindPendingTopUp(ctx context.Context, reference string) (*dbm.WalletTransaction, error) {
	txn, err := s.wallets.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: find top-up: %v", utils.ErrDatabaseError, err)
	}
	if txn == nil || txn.Type != dbm.WalletTxnCredit || txn.Status != dbm.WalletTxnPending {
		return nil, nil
	}
	return txn, nil
}

func (s *walletService) CompleteTopUp(ctx context.Context, reference string, status dbm.WalletTxnStatus, externalID string) (*dbm.WalletTransaction, error) {
	if status != dbm.WalletTxnCompleted && status != dbm.WalletTxnFailed {
		return nil, utils.ErrInvalidStatus
	}

	txn, err := s.wallets.FindTransactionByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: find top-up: %v", utils.ErrDatabaseError, err)
	}
	if txn == nil || txn.Type != dbm.WalletTxnCredit {
		return nil, utils.ErrTransactionNotFound
	}
	notPending := fmt.Errorf("%w: %w", utils.ErrTransactionNotFound, utils.ErrTransactionNotPending)
	if txn.Status != dbm.WalletTxnPending {
		return nil, notPending
	}

	err = s.txr.WithinTransaction(ctx, func(tx *gorm.DB) error {
		wallets := s.wallets.WithTx(tx)

		ok, err := wallets.UpdateTransactionStatus(ctx, txn.ID, dbm.WalletTxnPending, status, externalID)
		if err != nil {
			return fmt.Errorf("%w: update top-up: %v", utils.ErrDatabaseError, err)
		}
		if !ok {
			return notPending
		}

		if status == dbm.WalletTxnCompleted {
			if err := wallets.AdjustBalance(ctx, txn.WalletID, txn.Amount); err != nil {
				return fmt.Errorf("%w: credit wallet: %v", utils.ErrDatabaseError, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txn.Status = status
	if externalID != "" {
		txn.TransactionID = externalID
	}
	s.log.Info("top-up completed",
		zap.String("reference", reference),
		zap.String("status", string(status)),
		zap.String("amount", txn.Amount.String()))
	return txn, nil
}

func (s *walletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID, description string) (*dbm.Wallet, *dbm.WalletTransaction, error) {
	reference, err := utils.GenerateReference(debitPrefix, referenceLength)
	if err != nil {
		return nil, nil, err
	}
	return s.DebitWithin(ctx, nil, DebitInput{
		UserID:      userID,
		Currency:    s.cfg.Currency,
		Amount:      amount,
		OrderID:     orderID,
		Description: description,
		Reference:   reference,
	})
}

func (s *walletService) DebitWithin(ctx context.Context, tx *gorm.DB, in DebitInput) (*dbm.Wallet, *dbm.WalletTransaction, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, utils.ErrInvalidAmount
	}
	if in.Currency == "" {
		in.Currency = s.cfg.Currency
	}

	var (
		wallet *dbm.Wallet
		txn    *dbm.WalletTransaction
	)
	run := func(tx *gorm.DB) error {
		var err error
		wallet, txn, err = s.debit(ctx, s.wallets.WithTx(tx), in)
		return err
	}

	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = s.txr.WithinTransaction(ctx, run)
	}
	if err != nil {
		return nil, nil, err
	}
	return wallet, txn, nil
}

func (s *walletService) debit(ctx context.Context, wallets repositories.WalletRepository, in DebitInput) (*dbm.Wallet, *dbm.WalletTransaction, error) {
	if in.Reference != "" {
		existing, err := wallets.FindTransactionByReference(ctx, in.Reference)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: find debit: %v", utils.ErrDatabaseError, err)
		}
		if existing != nil {
			w, err := wallets.FindByUser(ctx, in.UserID, in.Currency)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: find wallet: %v", utils.ErrDatabaseError, err)
			}
			return w, existing, nil
		}
	}

	w, err := wallets.FindByUserForUpdate(ctx, in.UserID, in.Currency)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: lock wallet: %v", utils.ErrDatabaseError, err)
	}
	if w == nil || w.Balance.LessThan(in.Amount) {
		return nil, nil, utils.ErrInsufficientFunds
	}

	txn := &dbm.WalletTransaction{
		WalletID:    w.ID,
		UserID:      in.UserID,
		Amount:      in.Amount.Neg(),
		Type:        dbm.WalletTxnDebit,
		Status:      dbm.WalletTxnCompleted,
		Description: in.Description,
		Reference:   in.Reference,
		OrderID:     in.OrderID,
		Metadata:    jsonRaw(map[string]any{}),
	}
	if err := wallets.CreateTransaction(ctx, txn); err != nil {
		return nil, nil, fmt.Errorf("%w: create debit: %v", utils.ErrDatabaseError, err)
	}
	if err := wallets.AdjustBalance(ctx, w.ID, in.Amount.Neg()); err != nil {
		return nil, nil, fmt.Errorf("%w: debit wallet: %v", utils.ErrDatabaseError, err)
	}

	w.Balance = w.Balance.Sub(in.Amount)
	return w, txn, nil
}

func (s *walletService) LoyaltyBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	w, err := s.wallets.FindByUser(ctx, userID, s.cfg.LoyaltyCurrency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: find loyalty wallet: %v", utils.ErrDatabaseError, err)
	}
	if w == nil {
		return decimal.Zero, nil
	}
	return w.Balance, nil
}

func (s *walletService) RedeemPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int64, orderID uuid.UUID, reference string) error {
	if points <= 0 {
		return nil
	}
	_, _, err := s.DebitWithin(ctx, tx, DebitInput{
		UserID:      userID,
		Currency:    s.cfg.LoyaltyCurrency,
		Amount:      decimal.NewFromInt(points),
		OrderID:     &orderID,
		Description: "Loyalty points redeemed",
		Reference:   reference,
	})
	return err
}

func (s *walletService) EarnPoints(ctx context.Context, userID uuid.UUID, points int64, orderID uuid.UUID, reference string) error {
	if points <= 0 {
		return nil
	}

	return s.txr.WithinTransaction(ctx, func(tx *gorm.DB) error {
		wallets := s.wallets.WithTx(tx)

		existing, err := wallets.FindTransactionByReference(ctx, reference)
		if err != nil {
			return fmt.Errorf("%w: find earn entry: %v", utils.ErrDatabaseError, err)
		}
		if existing != nil {
			return nil
		}

		w, err := getOrCreateWallet(ctx, wallets, userID, s.cfg.LoyaltyCurrency)
		if err != nil {
			return err
		}

		amount := decimal.NewFromInt(points)
		if err := wallets.CreateTransaction(ctx, &dbm.WalletTransaction{
			WalletID:    w.ID,
			UserID:      userID,
			Amount:      amount,
			Type:        dbm.WalletTxnCredit,
			Status:      dbm.WalletTxnCompleted,
			Description: "Loyalty points earned",
			Reference:   reference,
			OrderID:     &orderID,
			Metadata:    jsonRaw(map[string]any{}),
		}); err != nil {
			return fmt.Errorf("%w: create earn entry: %v", utils.ErrDatabaseError, err)
		}
		if err := wallets.AdjustBalance(ctx, w.ID, amount); err != nil {
			return fmt.Errorf("%w: credit loyalty wallet: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
}
