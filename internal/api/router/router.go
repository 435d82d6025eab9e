package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"score-engine/config"
	"score-engine/internal/api/handler"
	"score-engine/internal/api/middleware"
)

// Setup Gin 라우터를 초기화해 반환한다
// limiter 가 nil 이면 계산 API 호출 제한을 건너뛴다
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 전역 미들웨어 ──
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 상태 확인 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 학생별 환산 점수
		students := v1.Group("/students/:id")
		{
			students.POST("/scores/calculate",
				middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger),
				h.Score.Calculate)
			students.GET("/scores", h.Score.GetScores)
			students.DELETE("/scores", h.Score.DeleteScores)
			students.GET("/scores/export", h.Export.ExportScores)
			students.GET("/recruitment-scores", h.Score.GetRecruitmentScores)
		}

		// 환산 공식
		formulas := v1.Group("/formulas")
		{
			formulas.GET("", h.Formula.List)
			formulas.POST("", h.Formula.Upsert)
			formulas.GET("/cache", h.Formula.CacheStats)
			formulas.POST("/reload", h.Formula.Reload)
			formulas.GET("/:university", h.Formula.Get)
		}
	}

	return r
}
