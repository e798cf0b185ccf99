package order_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

var Module = fx.Provide(
	repositories.NewOrderRepository,
	repositories.NewProductRepository,
	repositories.NewVoucherRepository,
	repositories.NewReadProgressRepository,
	repositories.NewUserRepository,
	provideOrderService,
	services.NewCartService,
	services.NewProductService,
)

func provideOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	vouchers repositories.VoucherRepository,
	carts repositories.CartRepository,
	dashboard repositories.DashboardRepository,
	wallets services.WalletService,
	cfg config.Config,
	log *zap.Logger,
) services.OrderService {
	return services.NewOrderService(orders, products, vouchers, carts, dashboard, wallets, cfg.Payment.Currency, log.Named("orders"))
}
