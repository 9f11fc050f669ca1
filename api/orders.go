package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service orders.OrderUseCase
	log     *zap.Logger
}

func NewOrderHandler(service orders.OrderUseCase, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{service: service, log: log}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/buy", h.buy)
	router.POST("/:id/cancel", h.cancel)
}

func (h *OrderHandler) create(c *gin.Context) {
	var input orders.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), auth.UserID(c), input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// list returns the caller's orders. Admins may pass all=true to see every
// order.
func (h *OrderHandler) list(c *gin.Context) {
	userID := auth.UserID(c)
	if auth.IsAdmin(c) && c.Query("all") == "true" {
		userID = ""
	}
	list, err := h.service.ListOrders(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) get(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) buy(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmOrder(c.Request.Context(), order.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, confirmed)
}

func (h *OrderHandler) cancel(c *gin.Context) {
	order, ok := h.owned(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelOrder(c.Request.Context(), order.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// owned loads the order named in the path and checks the caller may act on
// it. It writes the error response itself.
func (h *OrderHandler) owned(c *gin.Context) (*domain.Order, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid order id")
		return nil, false
	}
	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return nil, false
	}
	if !auth.IsAdmin(c) && !order.OwnedBy(auth.UserID(c)) {
		writeError(c, h.log, domain.ErrForbidden)
		return nil, false
	}
	return order, true
}
