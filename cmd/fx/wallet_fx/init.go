package wallet_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/infra"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

var Module = fx.Provide(
	repositories.NewWalletRepository, provideWalletService)

func provideWalletService(
	wallets repositories.WalletRepository,
	users repositories.UserRepository,
	gateway services.PaymentGateway,
	txr infra.Transactor,
	cfg config.Config,
	log *zap.Logger,
) services.WalletService {
	return services.NewWalletService(wallets, users, gateway, txr, services.WalletConfig{
		Currency:        cfg.Payment.Currency,
		LoyaltyCurrency: cfg.Loyalty.Currency,
		TopUpResultURL:  cfg.Payment.TopUpResultURL,
	}, log.Named("wallet"))
}
