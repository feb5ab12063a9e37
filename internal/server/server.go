package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gewgegeg/BAT3D/internal/config"
	"github.com/gewgegeg/BAT3D/internal/observability/metrics"
	paymentdomain "github.com/gewgegeg/BAT3D/internal/payment/domain"
	"github.com/gewgegeg/BAT3D/internal/payment/iptrust"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Payments  paymentdomain.Service
	IPFilter  *iptrust.Filter
	Metrics   *metrics.Metrics
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	payments paymentdomain.Service
	ipfilter *iptrust.Filter
	metrics  *metrics.Metrics
}

func New(p ServerParams) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      p.Config,
		log:      p.Log.Named("http.server"),
		db:       p.DB,
		payments: p.Payments,
		ipfilter: p.IPFilter,
		metrics:  p.Metrics,
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(p.Log),
		ErrorHandlingMiddleware(),
	)
	s.engine = engine
	s.registerRoutes()

	httpServer := &http.Server{
		Addr:              p.Config.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", httpServer.Addr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.cfg.AppName})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := s.engine.Group("/api/payments/yookassa")
	api.POST("/create/:orderId", s.AuthRequired(), s.HandleCreatePayment)
	// The payer may return in a session the API has no token for; the
	// page is informational and read-only.
	api.GET("/return/:orderId", s.HandlePaymentReturn)

	// gin has no per-route 405, so the webhook accepts any method and
	// rejects non-POST itself; the provider treats 405 as non-retryable.
	s.engine.Any("/api/payments/yookassa/webhook", s.HandleYooKassaWebhook)
}

// Engine exposes the router for handler tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

var Module = fx.Module("http.server",
	fx.Provide(New),
	fx.Invoke(func(*Server) {}),
)
