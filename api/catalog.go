package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/airtickets/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service catalog.CatalogUseCase
	log     *zap.Logger
}

func NewCatalogHandler(service catalog.CatalogUseCase, log *zap.Logger) *CatalogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{service: service, log: log}
}

// Register mounts the catalog collections on router. Creation is guarded by
// admin.
func (h *CatalogHandler) Register(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	router.GET("/countries", listHandler(h.log, h.service.ListCountries))
	router.POST("/countries", guarded(admin, createHandler(h.log, h.service.CreateCountry))...)
	router.GET("/airports", listHandler(h.log, h.service.ListAirports))
	router.POST("/airports", guarded(admin, createHandler(h.log, h.service.CreateAirport))...)
	router.GET("/airlines", listHandler(h.log, h.service.ListAirlines))
	router.POST("/airlines", guarded(admin, createHandler(h.log, h.service.CreateAirline))...)
	router.GET("/airplanes", listHandler(h.log, h.service.ListAirplanes))
	router.POST("/airplanes", guarded(admin, createHandler(h.log, h.service.CreateAirplane))...)
}

func createHandler[In, Out any](log *zap.Logger, fn func(context.Context, In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		out, err := fn(c.Request.Context(), input)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func listHandler[Out any](log *zap.Logger, fn func(context.Context) ([]Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := fn(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
