package controllers_fx

import (
	"go.uber.org/fx"

	"bookstore/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewWalletController),
	fx.Provide(controllers.NewCartController),
	fx.Provide(controllers.NewProductController),
	fx.Provide(controllers.NewUploadController),
	fx.Provide(controllers.NewDashboardController),
	fx.Provide(controllers.NewHealthController))
