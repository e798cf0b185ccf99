package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/infra"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
	"bookstore/pkg/freedompay"
)

var Module = fx.Provide(
	provideFreedomPayClient, provideGateway, provideSigner, provideSettlementService, providePaymentService,
)

func provideFreedomPayClient(cfg config.Config) *freedompay.Client {
	p := cfg.Payment
	return freedompay.NewClient(freedompay.Config{
		BaseURL:     p.BaseURL,
		MerchantID:  p.MerchantID,
		SecretKey:   p.SecretKey,
		Currency:    p.Currency,
		CheckURL:    p.CheckURL,
		ResultURL:   p.ResultURL,
		SuccessURL:  p.SuccessURL,
		FailureURL:  p.FailureURL,
		Lifetime:    p.Lifetime,
		TestingMode: p.TestingMode,
		Timeout:     p.Timeout,
	})
}

func provideGateway(client *freedompay.Client) services.PaymentGateway {
	return client
}

func provideSigner(client *freedompay.Client) freedompay.Signer {
	return client.Signer
}

func provideSettlementService(
	txr infra.Transactor,
	orders repositories.OrderRepository,
	progress repositories.ReadProgressRepository,
	vouchers repositories.VoucherRepository,
	carts repositories.CartRepository,
	wallets services.WalletService,
	events infra.EventPublisher,
	locker infra.Locker,
	cfg config.Config,
	log *zap.Logger,
) services.SettlementService {
	return services.NewSettlementService(txr, orders, progress, vouchers, carts, wallets, events, locker, services.SettlementConfig{
		LockTTL:        cfg.SettlementLockTTL,
		Tolerance:      cfg.Payment.AmountTolerance,
		LoyaltyDivisor: cfg.Loyalty.Divisor,
	}, log.Named("settlement"))
}

func providePaymentService(
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	vouchers repositories.VoucherRepository,
	wallets services.WalletService,
	settlement services.SettlementService,
	gateway services.PaymentGateway,
	signer freedompay.Signer,
	cfg config.Config,
	log *zap.Logger,
) services.PaymentService {
	return services.NewPaymentService(orders, users, vouchers, wallets, settlement, gateway, signer, services.PaymentConfig{
		CheckURL:       cfg.Payment.CheckURL,
		ResultURL:      cfg.Payment.ResultURL,
		TopUpResultURL: cfg.Payment.TopUpResultURL,
		SuccessURL:     cfg.Payment.SuccessURL,
	}, log.Named("payments"))
}
