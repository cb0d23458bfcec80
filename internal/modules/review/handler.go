package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ignitegigs/internal/middleware"
	"ignitegigs/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/performers/:id/reviews", h.ListForPerformer)
	}
	if protected != nil {
		protected.POST("/bookings/:id/reviews", h.Create)
		protected.POST("/reviews/:id/response", h.Respond)
	}
}

// Create
// @Summary  Review the other party of a completed booking
// @Tags     Reviews
// @Security BearerAuth
// @Param    id      path string              true "Booking ID"
// @Param    request body CreateReviewRequest true "Rating and text"
// @Success  201 {object} map[string]interface{}
// @Failure  400 {object} map[string]interface{} "Validation error or already reviewed"
// @Failure  403 {object} map[string]interface{} "Not a party to the booking"
// @Failure  409 {object} map[string]interface{} "Booking not completed"
// @Router   /bookings/{id}/reviews [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Rating must be between 1 and 5")
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}

func (h *Handler) ListForPerformer(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	out, err := h.svc.ListForPerformer(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Respond(c *gin.Context) {
	var req ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Response is required")
		return
	}

	rv, err := h.svc.Respond(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Response)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": rv})
}
