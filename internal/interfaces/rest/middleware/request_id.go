package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader(RequestIDHeader) == "" {
			ctx.Request.Header.Set(RequestIDHeader, uuid.NewString())
		}
		ctx.Header(RequestIDHeader, ctx.GetHeader(RequestIDHeader))
		ctx.Next()
	}
}
