package dispute

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

// RegisterRoutes mounts the party-facing routes; raiseGuards run in front of
// raising a dispute only.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, raiseGuards ...gin.HandlerFunc) {
	protected.POST("/bookings/:id/disputes", append(raiseGuards, h.Raise)...)
	protected.GET("/bookings/:id/disputes", h.ListForBooking)
	protected.GET("/disputes/:id", h.Get)
}

// RegisterAdminRoutes expects a group already restricted to admins.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	g := admin.Group("/disputes")
	{
		g.GET("", h.List)
		g.POST("/:id/review", h.StartReview)
		g.POST("/:id/notes", h.AddNotes)
		g.POST("/:id/resolve", h.Resolve)
	}
}

func (h *Handler) Raise(c *gin.Context) {
	var req RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Reason and description are required")
		return
	}

	d, err := h.service.Raise(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"dispute": d})
}

func (h *Handler) Get(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) ListForBooking(c *gin.Context) {
	list, err := h.service.ListForBooking(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disputes": list})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, err := h.service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disputes": list})
}

func (h *Handler) StartReview(c *gin.Context) {
	d, err := h.service.StartReview(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) AddNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Notes are required")
		return
	}

	d, err := h.service.AddNotes(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Resolution status is required")
		return
	}

	d, err := h.service.Resolve(c.Request.Context(), middleware.ActorFrom(c).UserID, c.Param("id"), req.Status, req.Resolution, req.RefundAmount)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}
