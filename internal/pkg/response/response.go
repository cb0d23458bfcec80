package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/pkg/validator"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// CustomError writes the error envelope and aborts the chain.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// BindError answers a failed body bind. Tag failures carry per-field details;
// malformed JSON gets the plain message.
func BindError(c *gin.Context, err error, message string) {
	if fields := validator.Fields(err); fields != nil {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", message, fields)
		return
	}
	Error(c, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

type mapping struct {
	status   int
	code     string
	fallback string
}

var kinds = []struct {
	kind error
	mapping
}{
	{domain.ErrValidation, mapping{http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request"}},
	{domain.ErrUnauthorized, mapping{http.StatusForbidden, "FORBIDDEN", "not authorized"}},
	{domain.ErrNotFound, mapping{http.StatusNotFound, "NOT_FOUND", "Not found"}},
	{domain.ErrInvalidTransition, mapping{http.StatusConflict, "INVALID_TRANSITION", "This action is not allowed in the current state"}},
	{domain.ErrDuplicateDispute, mapping{http.StatusConflict, "DUPLICATE_DISPUTE", "You have already raised a dispute for this booking"}},
	{domain.ErrPayeeNotReady, mapping{http.StatusUnprocessableEntity, "PAYEE_NOT_READY", "This performer cannot accept payments yet"}},
	{domain.ErrInvalidSignature, mapping{http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid signature"}},
	{domain.ErrGateway, mapping{http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR", "The payment provider could not process the request"}},
}

// FromError maps a domain error onto the envelope. Unknown errors become a
// 500 with a generic message and are attached to the gin context for the
// error logger.
func FromError(c *gin.Context, err error) {
	for _, k := range kinds {
		if !errors.Is(err, k.kind) {
			continue
		}
		msg := k.fallback
		if k.kind != domain.ErrUnauthorized {
			msg = domain.UserMessage(err, k.fallback)
		}
		Error(c, k.status, k.code, msg)
		return
	}
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}
