package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telestore/telestore/internal/autoapprove"
	"github.com/telestore/telestore/internal/cart"
	cartdomain "github.com/telestore/telestore/internal/cart/domain"
	"github.com/telestore/telestore/internal/catalog"
	catalogdomain "github.com/telestore/telestore/internal/catalog/domain"
	"github.com/telestore/telestore/internal/config"
	"github.com/telestore/telestore/internal/fulfillment"
	"github.com/telestore/telestore/internal/janitor"
	"github.com/telestore/telestore/internal/migration"
	"github.com/telestore/telestore/internal/payment"
	paymentdomain "github.com/telestore/telestore/internal/payment/domain"
	"github.com/telestore/telestore/internal/promo"
	promodomain "github.com/telestore/telestore/internal/promo/domain"
	"github.com/telestore/telestore/internal/purchase"
	purchasedomain "github.com/telestore/telestore/internal/purchase/domain"
	"github.com/telestore/telestore/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	migration.Module,
	session.Module,
	catalog.Module,
	cart.Module,
	promo.Module,
	purchase.Module,
	autoapprove.Module,
	payment.Module,
	fulfillment.Module,
	janitor.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, sessions *session.Store, manager *session.Manager) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(metricsMiddleware())
	r.Use(session.Middleware(sessions, manager, log))

	if err := loadTemplates(r); err != nil {
		return nil, err
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	settings    *config.SettingsHolder
	db          *gorm.DB
	log         *zap.Logger
	catalogSvc  catalogdomain.Service
	cartSvc     cartdomain.Service
	promoSvc    promodomain.Service
	paymentSvc  paymentdomain.Service
	purchaseSvc purchasedomain.Service
	fulfillSvc  *fulfillment.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Settings    *config.SettingsHolder
	DB          *gorm.DB
	Log         *zap.Logger
	CatalogSvc  catalogdomain.Service
	CartSvc     cartdomain.Service
	PromoSvc    promodomain.Service
	PaymentSvc  paymentdomain.Service
	PurchaseSvc purchasedomain.Service
	FulfillSvc  *fulfillment.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		settings:    p.Settings,
		db:          p.DB,
		log:         p.Log.Named("server"),
		catalogSvc:  p.CatalogSvc,
		cartSvc:     p.CartSvc,
		promoSvc:    p.PromoSvc,
		paymentSvc:  p.PaymentSvc,
		purchaseSvc: p.PurchaseSvc,
		fulfillSvc:  p.FulfillSvc,
	}

	svc.registerStorefrontRoutes()
	svc.registerCartRoutes()
	svc.registerCheckoutRoutes()
	svc.registerAccountRoutes()
	svc.registerAuthRoutes()
	svc.registerAdminRoutes()

	return svc
}
