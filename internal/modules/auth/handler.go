package auth

import (
	"errors"
	"net/http"
	"strconv"

	"ignitegigs/internal/pkg/response"
	"ignitegigs/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts /auth. Guards are installed per route so login
// and signup count against their own presets.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, loginGuard, signupGuard gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", signupGuard, h.Register)
		authGroup.POST("/login", loginGuard, h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
}

// Register
// @Summary  Create a client or performer account
// @Tags     Auth
// @Param    request body RegisterRequest true "Account details"
// @Success  201 {object} AuthResponse
// @Failure  400 {object} map[string]interface{}
// @Failure  429 {object} map[string]interface{}
// @Router   /auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Invalid request body")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, AuthResponse{
		User:  toPublic(res.User, res.PerformerID),
		Token: res.Token,
	})
}

// Login
// @Summary  Exchange email and password for a JWT
// @Tags     Auth
// @Param    request body LoginRequest true "Credentials"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} map[string]interface{}
// @Failure  429 {object} map[string]interface{}
// @Router   /auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err, "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), ratelimit.Login.Key(ratelimit.ClientKey(c.Request)), req)
	if err != nil {
		var locked *LockedOutError
		switch {
		case errors.As(err, &locked):
			c.Header("Retry-After", strconv.Itoa(int(locked.Remaining.Seconds())+1))
			response.Error(c, http.StatusTooManyRequests, "ACCOUNT_LOCKED", locked.Error())
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		default:
			response.FromError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, AuthResponse{
		User:  toPublic(res.User, ""),
		Token: res.Token,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPublic(user, ""))
}
