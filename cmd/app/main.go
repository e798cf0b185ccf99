package main

import (
	"context"
	"errors"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookstore/cmd/fx/config_fx"
	"bookstore/cmd/fx/controllers_fx"
	"bookstore/cmd/fx/dashboard"
	"bookstore/cmd/fx/db_fx"
	"bookstore/cmd/fx/memcache_fx"
	"bookstore/cmd/fx/order_fx"
	"bookstore/cmd/fx/payment_service_fx"
	"bookstore/cmd/fx/storage_fx"
	"bookstore/cmd/fx/wallet_fx"
	"bookstore/internal/api/controllers"
	"bookstore/internal/config"
	"bookstore/pkg/middleware"
	"bookstore/pkg/utils"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		storage_fx.Module,
		order_fx.Module,
		wallet_fx.Module,
		payment_service_fx.Module,
		dashboard.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type Controllers struct {
	fx.In

	Orders    *controllers.OrderController
	Payments  *controllers.PaymentController
	Wallet    *controllers.WalletController
	Cart      *controllers.CartController
	Products  *controllers.ProductController
	Uploads   *controllers.UploadController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
}

func ProvideRouter(cfg config.Config, log *zap.Logger, ctrl Controllers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CORSMiddleware())

	callbackLimiter := middleware.NewRateLimiter(rate.Limit(cfg.CallbackRateLimit), cfg.CallbackBurst)

	RegisterRoutes(r, ctrl, callbackLimiter.Middleware())

	return r
}

func RegisterRoutes(r *gin.Engine, ctrl Controllers, callbackLimit gin.HandlerFunc) {
	r.GET("/health", ctrl.Health.Health)

	auth := middleware.JWTAuthMiddleware()
	admin := middleware.RoleMiddleware(utils.RoleAdmin)

	orders := r.Group("/orders", auth)
	orders.POST("", ctrl.Orders.CreateOrder)
	orders.GET("", admin, ctrl.Orders.ListOrders)
	orders.GET("/stats", admin, ctrl.Orders.OrderStats)
	orders.GET("/:id", ctrl.Orders.GetOrder)
	orders.PATCH("/:id", admin, ctrl.Orders.UpdateOrder)

	payments := r.Group("/payments")
	payments.POST("/init/:orderId", auth, ctrl.Payments.InitPayment)
	payments.POST("/wallet/:orderId", auth, ctrl.Payments.PayWithWallet)
	payments.GET("/status/:orderId", auth, ctrl.Payments.GetPaymentStatus)
	// gateway callbacks, authenticated by pg_sig
	payments.GET("/check", callbackLimit, ctrl.Payments.Check)
	payments.POST("/check", callbackLimit, ctrl.Payments.Check)
	payments.GET("/result", callbackLimit, ctrl.Payments.Result)
	payments.POST("/result", callbackLimit, ctrl.Payments.Result)
	payments.GET("/success", ctrl.Payments.Success)
	payments.GET("/failure", ctrl.Payments.Failure)

	wallet := r.Group("/wallet")
	wallet.GET("/balance", auth, ctrl.Wallet.GetBalance)
	wallet.GET("/transactions", auth, ctrl.Wallet.ListTransactions)
	wallet.POST("/add-funds", auth, ctrl.Wallet.AddFunds)
	wallet.GET("/process-top-up", callbackLimit, ctrl.Wallet.ProcessTopUp)
	wallet.POST("/process-top-up", callbackLimit, ctrl.Wallet.ProcessTopUp)

	cart := r.Group("/cart", auth)
	cart.GET("", ctrl.Cart.GetCart)
	cart.PUT("", ctrl.Cart.UpdateCart)

	r.GET("/products", ctrl.Products.ListProducts)

	uploads := r.Group("/uploads", auth, admin)
	uploads.POST("/presign", ctrl.Uploads.PresignUpload)
	uploads.POST("", ctrl.Uploads.Upload)
	uploads.DELETE("", ctrl.Uploads.Delete)

	r.GET("/dashboard", auth, admin, ctrl.Dashboard.GetDashboard)
}
