// Package server exposes the HTTP API: taxpayer onboarding, device
// registration, fiscal day transitions and receipt submission.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/observability"
	obsmiddleware "github.com/fiscalware/fiscalway/internal/observability/logger"
	obsmetrics "github.com/fiscalware/fiscalway/internal/observability/metrics"
	obstracing "github.com/fiscalware/fiscalway/internal/observability/tracing"
	receiptdomain "github.com/fiscalware/fiscalway/internal/receipt/domain"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
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
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	taxpayerSvc     taxpayerdomain.Service
	subdomainSvc    subdomaindomain.Service
	subscriptionSvc subscriptiondomain.Service
	deviceSvc       devicedomain.Service
	fiscalSvc       fiscaldomain.Service
	receiptSvc      receiptdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	GenID *snowflake.Node

	TaxpayerSvc     taxpayerdomain.Service
	SubdomainSvc    subdomaindomain.Service
	SubscriptionSvc subscriptiondomain.Service
	DeviceSvc       devicedomain.Service
	FiscalSvc       fiscaldomain.Service
	ReceiptSvc      receiptdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		genID:           p.GenID,
		taxpayerSvc:     p.TaxpayerSvc,
		subdomainSvc:    p.SubdomainSvc,
		subscriptionSvc: p.SubscriptionSvc,
		deviceSvc:       p.DeviceSvc,
		fiscalSvc:       p.FiscalSvc,
		receiptSvc:      p.ReceiptSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(TenantMiddleware())

	taxpayers := api.Group("/taxpayers")
	{
		taxpayers.POST("", s.createTaxpayer)
		taxpayers.GET("", s.listTaxpayers)
		taxpayers.GET("/:id", s.getTaxpayer)
		taxpayers.PATCH("/:id", s.updateTaxpayer)
		taxpayers.GET("/:id/receipts", s.listTaxpayerReceipts)
		taxpayers.GET("/:id/subdomains", s.listTaxpayerSubdomains)
		taxpayers.GET("/:id/subscriptions", s.listTaxpayerSubscriptions)
	}

	subdomains := api.Group("/subdomains")
	{
		subdomains.POST("", s.createSubdomain)
		subdomains.GET("/resolve/:name", s.resolveSubdomain)
		subdomains.DELETE("/:id", s.deleteSubdomain)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("", s.createSubscription)
		subscriptions.GET("/:id", s.getSubscription)
		subscriptions.POST("/:id/cancel", s.cancelSubscription)
	}

	devices := api.Group("/devices")
	{
		devices.POST("", s.registerDevice)
		devices.GET("", s.listDevices)
		devices.GET("/:device_id", s.getDevice)
		devices.PATCH("/:device_id/config", s.updateDeviceConfig)

		devices.POST("/:device_id/fiscal/open", s.openFiscalDay)
		devices.POST("/:device_id/fiscal/close", s.closeFiscalDay)
		devices.POST("/:device_id/fiscal/counters", s.recordFiscalCounters)
		devices.GET("/:device_id/fiscal/counters", s.getFiscalCounters)
		devices.GET("/:device_id/fiscal/signatures", s.listDaySignatures)

		devices.GET("/:device_id/receipts", s.listDeviceReceipts)
	}

	receipts := api.Group("/receipts")
	{
		receipts.POST("/submit", s.submitReceipt)
		receipts.GET("/:id", s.getReceipt)
	}
}
