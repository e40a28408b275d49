// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/pubsum/internal/logging"
)

const (
	// HeaderRequestID carries the request ID in and out.
	HeaderRequestID = "X-Request-ID"

	ctxKeyRequestID = "request_id"
)

// requestID takes X-Request-ID from the request or generates a UUID, echoes
// it on the response and attaches a request-scoped logger to the context.
func requestID(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)

		ctx := logging.WithContext(c.Request.Context(), base.With(slog.String("request_id", id)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLog logs one line per completed request. Paths under /-/ are
// probes and are skipped.
func requestLog(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/-/") {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		log := logging.FromContext(c.Request.Context(), base)
		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}

// recovery turns a panic into a 500 with the standard error body.
func recovery(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(c.Request.Context(), base).Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(debug.Stack())),
					slog.String("path", c.Request.URL.Path))
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal", "an internal error occurred"))
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// timeout bounds the request context. Handlers observe it through the
// fetch retry loop.
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// maxBodySize caps request bodies.
func maxBodySize(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
