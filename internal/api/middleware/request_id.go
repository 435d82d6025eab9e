package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey gin.Context 에 저장되는 요청 ID 키
const RequestIDKey = "request_id"

// 외부에서 들어온 ID 의 최대 길이 (로그 주입 방지)
const requestIDMaxLen = 64

// RequestID X-Request-ID 헤더를 이어받거나 새 UUID 를 발급한다
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
