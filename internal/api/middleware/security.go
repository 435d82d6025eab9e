package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 기본 보안 응답 헤더
// JSON 과 엑셀 파일만 내려주므로 CSP 는 모두 막는다
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
