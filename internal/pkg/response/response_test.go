package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ignitegigs/internal/domain"
)

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func render(t *testing.T, err error) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestFromError_Kinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Validation("Event date must be today or later"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.Unauthorized(), http.StatusForbidden, "FORBIDDEN"},
		{domain.NotFound("Booking not found"), http.StatusNotFound, "NOT_FOUND"},
		{domain.InvalidTransition("nope"), http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrDuplicateDispute, http.StatusConflict, "DUPLICATE_DISPUTE"},
		{domain.ErrPayeeNotReady, http.StatusUnprocessableEntity, "PAYEE_NOT_READY"},
		{domain.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
		{fmt.Errorf("wrap: %w", &domain.Error{Kind: domain.ErrGateway, Message: "card declined"}), http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, env := render(t, tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.False(t, env.Success)
		assert.Equal(t, tt.code, env.Error.Code)
	}
}

func TestFromError_Messages(t *testing.T) {
	_, env := render(t, domain.Validation("Event date must be today or later"))
	assert.Equal(t, "Event date must be today or later", env.Error.Message)

	_, env = render(t, &domain.Error{Kind: domain.ErrUnauthorized, Message: "you are not the performer"})
	assert.Equal(t, "not authorized", env.Error.Message)

	_, env = render(t, errors.New("pq: connection refused"))
	assert.Equal(t, "Something went wrong", env.Error.Message)
}

func TestBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	type body struct {
		Reason string `json:"reason" binding:"required"`
	}

	bind := func(raw string) (int, map[string]any) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		c.Request.Header.Set("Content-Type", "application/json")

		var req body
		err := c.ShouldBindJSON(&req)
		require.Error(t, err)
		BindError(c, err, "Reason is required")

		var env struct {
			Error map[string]any `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return w.Code, env.Error
	}

	status, e := bind(`{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Equal(t, map[string]any{"Reason": "required"}, e["details"])

	_, e = bind(`{"reason":`)
	assert.Equal(t, "Reason is required", e["message"])
	assert.NotContains(t, e, "details")
}
