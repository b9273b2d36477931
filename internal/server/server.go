// Package server wires the HTTP surface: the provider webhook endpoint,
// admin ticket remediation routes, and operational endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/luminary-arts/memberhub/internal/config"
	"github.com/luminary-arts/memberhub/internal/observability"
	obsmiddleware "github.com/luminary-arts/memberhub/internal/observability/logger"
	obsmetrics "github.com/luminary-arts/memberhub/internal/observability/metrics"
	obstracing "github.com/luminary-arts/memberhub/internal/observability/tracing"
	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	"github.com/luminary-arts/memberhub/internal/webhook"
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
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))

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
	engine   *gin.Engine
	webhooks webhook.Service
	tickets  ticketdomain.Service
}

type ServerParams struct {
	fx.In

	Engine   *gin.Engine
	Cfg      config.Config
	Webhooks webhook.Service
	Tickets  ticketdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:   p.Engine,
		webhooks: p.Webhooks,
		tickets:  p.Tickets,
	}

	s.registerWebhookRoutes()
	s.registerAdminRoutes()
	if p.Cfg.Ticket.ArtifactDir != "" {
		s.engine.Static("/artifacts", p.Cfg.Ticket.ArtifactDir)
	}
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/api/webhooks/stripe", s.handleStripeWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")
	admin.GET("/tickets", s.handleListTickets)
	admin.POST("/tickets/:id/regenerate", s.handleRegenerateTicket)
}
