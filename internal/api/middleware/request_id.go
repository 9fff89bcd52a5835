package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 上下文中请求 ID 的键名
const RequestIDKey = "request_id"

// RequestIDHeader 透传请求 ID 的响应头
const RequestIDHeader = "X-Request-ID"

// RequestID 请求 ID 中间件。
// 客户端携带 X-Request-ID 则沿用，否则生成新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
