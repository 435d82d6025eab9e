package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"score-engine/pkg/response"
)

// RateLimiter 슬라이딩 윈도우 호출 제한 (*redis.Client 가 구현)
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 학생 단위 계산 호출 제한
// 키는 클라이언트 IP 와 라우트, 경로의 학생 ID 로 구성한다
// limiter 가 nil 이거나 Redis 오류가 나면 통과시킨다
func RateLimit(limiter RateLimiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s:%s", c.ClientIP(), c.FullPath(), c.Param("id"))
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("호출 제한 확인 실패, 통과 처리", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "요청이 너무 잦습니다. 잠시 후 다시 시도하세요")
			c.Abort()
			return
		}

		c.Next()
	}
}
