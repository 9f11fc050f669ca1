package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported without detail.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message = verr.Error()
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInventoryExhausted):
		return http.StatusConflict, "inventory_exhausted"
	case errors.Is(err, domain.ErrSeatTaken):
		return http.StatusConflict, "seat_taken"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	}
	return http.StatusInternalServerError, "internal_error"
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Message: message})
}
