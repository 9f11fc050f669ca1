package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/airtickets/internal/service/payment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	gateway payment.WebhookUseCase
	header  string
	log     *zap.Logger
}

func NewWebhookHandler(gateway payment.WebhookUseCase, signatureHeader string, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if signatureHeader == "" {
		signatureHeader = "Payment-Signature"
	}
	return &WebhookHandler{gateway: gateway, header: signatureHeader, log: log}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/webhook", h.receive)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}

	outcome, err := h.gateway.Handle(c.Request.Context(), c.GetHeader(h.header), body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": string(outcome)})
	case errors.Is(err, payment.ErrInvalidSignature):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid_signature", Message: "signature verification failed"})
	case errors.Is(err, payment.ErrMalformed):
		badRequest(c, "malformed event")
	default:
		h.log.Error("webhook processing failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"})
	}
}
