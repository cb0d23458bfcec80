package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ignitegigs/internal/middleware"
	"ignitegigs/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the booking routes on an authenticated group.
// createGuards run in front of booking creation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, createGuards ...gin.HandlerFunc) {
	g := rg.Group("/bookings")
	{
		g.POST("", append(createGuards, h.CreateBooking)...)
		g.GET("", h.ListBookings)
		g.GET("/:id", h.GetBooking)
		g.POST("/:id/accept", h.AcceptBooking)
		g.POST("/:id/decline", h.DeclineBooking)
		g.POST("/:id/cancel", h.CancelBooking)
		g.GET("/:id/messages", h.ListMessages)
		g.POST("/:id/messages", h.SendMessage)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), middleware.ActorFrom(c).UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	view := View(c.DefaultQuery("view", string(ViewClient)))
	if view != ViewClient && view != ViewPerformer {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "view must be client or performer")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, err := h.service.ListBookings(c.Request.Context(), middleware.ActorFrom(c).UserID, view, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AcceptBooking(c *gin.Context) {
	var req AcceptBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err, "Invalid request body")
			return
		}
	}

	b, err := h.service.AcceptBooking(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.AgreedPrice)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) DeclineBooking(c *gin.Context) {
	req, ok := bindReason(c)
	if !ok {
		return
	}

	b, err := h.service.DeclineBooking(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	req, ok := bindReason(c)
	if !ok {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Message content is required")
		return
	}

	m, err := h.service.SendMessage(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": m})
}

func (h *Handler) ListMessages(c *gin.Context) {
	list, err := h.service.ListMessages(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": list})
}

// bindReason accepts an empty body as "no reason".
func bindReason(c *gin.Context) (ReasonRequest, bool) {
	var req ReasonRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Invalid request body")
		return req, false
	}
	return req, true
}
