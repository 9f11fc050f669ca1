package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service flights.FlightUseCase
	log     *zap.Logger
}

type updateStatusRequest struct {
	Status domain.FlightStatus `json:"status" binding:"required"`
}

func NewFlightHandler(service flights.FlightUseCase, log *zap.Logger) *FlightHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlightHandler{service: service, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", guarded(admin, h.create)...)
	router.PATCH("/:id/status", guarded(admin, h.updateStatus)...)
}

func (h *FlightHandler) list(c *gin.Context) {
	var filter repository.FlightFilter
	var err error
	if v := c.Query("departure_airport_id"); v != "" {
		if filter.DepartureAirportID, err = strconv.ParseInt(v, 10, 64); err != nil {
			badRequest(c, "departure_airport_id must be an integer")
			return
		}
	}
	if v := c.Query("arrival_airport_id"); v != "" {
		if filter.ArrivalAirportID, err = strconv.ParseInt(v, 10, 64); err != nil {
			badRequest(c, "arrival_airport_id must be an integer")
			return
		}
	}
	filter.Status = domain.FlightStatus(c.Query("status"))

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var input flights.CreateFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	flight, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, ok := flightID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	flight, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func flightID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
