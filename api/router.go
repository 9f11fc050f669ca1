package api

import (
	"net/http"
	"path/filepath"

	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Flights   *FlightHandler
	Catalog   *CatalogHandler
	Orders    *OrderHandler
	Webhook   *WebhookHandler
	JWTSecret string
	// DocsDir holds openapi.json. Docs routes are skipped when empty.
	DocsDir string
	// Gateway serves the /v1 REST bridge to the gRPC services.
	Gateway http.Handler
	Log     *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(Recovery(log), Logger(log))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.DocsDir != "" {
		router.StaticFile("/docs/openapi.json", filepath.Join(cfg.DocsDir, "openapi.json"))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))
	}
	if cfg.Gateway != nil {
		router.Any("/v1/*path", gin.WrapH(cfg.Gateway))
	}

	v1 := router.Group("/api/v1")
	if cfg.Webhook != nil {
		cfg.Webhook.Register(v1.Group("/payments"))
	}

	authed := v1.Group("", auth.Middleware(cfg.JWTSecret))
	admin := auth.RequireAdmin()
	if cfg.Flights != nil {
		cfg.Flights.Register(authed.Group("/flights"), admin)
	}
	if cfg.Catalog != nil {
		cfg.Catalog.Register(authed, admin)
	}
	if cfg.Orders != nil {
		cfg.Orders.Register(authed.Group("/orders"))
	}
	return router
}
