package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"factura/internal/core/apperror"
	"factura/internal/core/idempotency"
	"factura/internal/infrastructure/http/v1/dto"
	"factura/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		renderError(c, c.Errors.Last().Err)
	}
}

// renderError writes the {code, message, details} body for err and records
// it as the outcome of the request's idempotency key. Retryable and server
// errors release the key instead so the retry runs the operation again.
func renderError(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	if status >= http.StatusInternalServerError || apperror.IsRetryable(err) {
		ReleaseIdempotency(c)
	} else {
		FailIdempotency(c, status, body)
	}
	c.AbortWithStatusJSON(status, body)
}

func errorBody(c *gin.Context, err error) (int, dto.ErrorResponse) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "error", err)
		return http.StatusInternalServerError, dto.ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": c.GetString(ctxKeyRequestID)},
		}
	}

	if appErr.Err != nil {
		logger.Error(ctx, "request error",
			"code", appErr.Code,
			"cause", appErr.Err,
		)
	}
	return appErr.HTTPStatus, dto.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}

// idempotencyFrom returns the key acquired for this request, if any.
func idempotencyFrom(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(ctxKeyIdempotencyKey)
	if key == "" {
		return "", nil, false
	}
	v, ok := c.Get(ctxKeyIdempotencyStore)
	if !ok {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok && store != nil
}

// FailIdempotency stores an error response for replay (best-effort).
func FailIdempotency(c *gin.Context, status int, body any) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.FailKey(c.Request.Context(), key, status, "application/json", body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency fail not stored", "key", key, "error", err)
	}
}

// ReleaseIdempotency drops the pending key (best-effort).
func ReleaseIdempotency(c *gin.Context) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.ReleaseKey(c.Request.Context(), key); err != nil {
		logger.Warn(c.Request.Context(), "idempotency key not released", "key", key, "error", err)
	}
}

// CompleteIdempotency stores a successful response for replay (best-effort).
func CompleteIdempotency(c *gin.Context, status int, contentType string, body any) {
	key, store, ok := idempotencyFrom(c)
	if !ok {
		return
	}
	if err := store.CompleteKey(c.Request.Context(), key, status, contentType, body); err != nil {
		logger.Warn(c.Request.Context(), "idempotency completion not stored", "key", key, "error", err)
	}
}
