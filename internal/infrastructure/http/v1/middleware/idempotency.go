package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"factura/internal/core/apperror"
	appctx "factura/internal/core/context"
	"factura/internal/core/idempotency"
)

const (
	HeaderIdempotencyKey    = "X-Idempotency-Key"
	HeaderIdempotentReplay  = "X-Idempotent-Replay"
	maxIdempotencyKeyLen    = 255
	maxIdempotencyBodyBytes = 1 << 20 // 1 MiB
)

// Idempotency middleware protects against duplicate requests.
// A mutating call carrying X-Idempotency-Key runs once; a retry with the
// same key and body gets the first response back.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			_ = c.Error(apperror.NewValidation("idempotency key is too long").
				WithDetail("max_length", maxIdempotencyKeyLen))
			c.Abort()
			return
		}

		ctx := c.Request.Context()

		// Hash request body
		limited := io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1)
		body, err := io.ReadAll(limited)
		if err != nil {
			_ = c.Error(apperror.NewValidation("unreadable request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		// Operation name from path
		operation := c.Request.Method + " " + c.Request.URL.Path

		replay, err := store.AcquireKey(ctx, key, appctx.GetActor(ctx), operation, requestHash)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			}
			c.Abort()
			return
		}

		if replay != nil {
			c.Header(HeaderIdempotentReplay, "true")
			if len(replay.Body) == 0 {
				c.Status(replay.StatusCode)
			} else {
				c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			}
			c.Abort()
			return
		}

		c.Set(ctxKeyIdempotencyKey, key)
		c.Set(ctxKeyIdempotencyStore, store)

		c.Next()
	}
}
