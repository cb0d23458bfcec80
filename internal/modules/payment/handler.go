package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ignitegigs/internal/gateway"
	"ignitegigs/internal/middleware"
	"ignitegigs/internal/pkg/response"
)

// maxWebhookBody caps the bytes read from a webhook delivery.
const maxWebhookBody = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/bookings/:id/payments", h.InitiatePayment)
}

// RegisterWebhook mounts the gateway callback. It must not sit behind JWT
// auth; the signature is the authentication.
func (h *Handler) RegisterWebhook(public *gin.RouterGroup) {
	public.POST("/webhooks/stripe", h.Webhook)
}

func (h *Handler) InitiatePayment(c *gin.Context) {
	res, err := h.service.InitiatePayment(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Failed to read body")
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(gateway.SignatureHeader)); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, WebhookAck{Received: true})
}

// SweepHandler lets an operator or scheduler trigger the refund sweep over
// HTTP instead of running cmd/refund_sweep.
type SweepHandler struct {
	sweeper *RefundSweeper
	batch   int
}

func NewSweepHandler(sweeper *RefundSweeper, batch int) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, batch: batch}
}

// RegisterInternalRoutes expects a group already guarded by
// middleware.InternalTokenAuth.
func (h *SweepHandler) RegisterInternalRoutes(internal *gin.RouterGroup) {
	internal.POST("/refunds/sweep", h.Sweep)
}

func (h *SweepHandler) Sweep(c *gin.Context) {
	processed, failed, err := h.sweeper.Run(c.Request.Context(), h.batch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, SweepResult{Processed: processed, Failed: failed})
}
