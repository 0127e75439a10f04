package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/carpark/internal/config"
	ledgerdomain "github.com/smallbiznis/carpark/internal/ledger/domain"
	"github.com/smallbiznis/carpark/internal/observability"
	obsmiddleware "github.com/smallbiznis/carpark/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/carpark/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
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
	engine     *gin.Engine
	parkingSvc ledgerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	ParkingSvc ledgerdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		parkingSvc: p.ParkingSvc,
	}
}

// RegisterRoutes attaches the parking API to the engine.
func (s *Server) RegisterRoutes() {
	entry := s.engine.Group("/entry")
	{
		entry.POST("", s.registerEntry)
		entry.GET("/history", s.listHistory)
		entry.PATCH("/:country/:registration_no", s.changeFloor)
		entry.DELETE("/:country/:registration_no", s.registerExit)
	}

	payment := s.engine.Group("/payment")
	{
		payment.GET("/:country/:registration_no", s.getQuote)
		payment.POST("/:country/:registration_no", s.pay)
	}

	vehicles := s.engine.Group("/vehicles")
	{
		vehicles.GET("", s.listVehicles)
		vehicles.GET("/search", s.searchVehicles)
	}

	admin := s.engine.Group("/admin")
	{
		admin.GET("/lockdown", s.getLockdown)
		admin.POST("/lockdown", s.setLockdown)
	}
}
