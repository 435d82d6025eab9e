package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"score-engine/config"
	"score-engine/internal/api/handler"
	"score-engine/internal/api/middleware"
	"score-engine/internal/api/router"
	"score-engine/internal/repository"
	"score-engine/internal/service"
	"score-engine/pkg/database"
	applogger "score-engine/pkg/logger"
	"score-engine/pkg/redis"
	"score-engine/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "설정 파일 경로 (기본: ./config/config.yaml)")
	flag.Parse()

	// 1. 설정
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로거
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "로거 초기화 실패: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("애플리케이션 시작",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("default_year", cfg.Calculation.DefaultYear),
	)

	// 3. 트레이싱
	shutdownTracing, err := tracing.Init(context.Background(), &cfg.Tracing, logger)
	if err != nil {
		logger.Warn("트레이싱 초기화 실패, 트레이싱 없이 진행", zap.Error(err))
	}

	// 4. 데이터베이스
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("데이터베이스 연결 실패", zap.Error(err))
	}

	// 4.1 마이그레이션
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB 획득 실패", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("데이터베이스 마이그레이션 실패", zap.Error(err))
	}

	// 5. Redis (선택: 실패하면 잠금과 호출 제한 없이 동작)
	var (
		locker  service.CalculationLocker
		limiter middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 연결 실패, 계산 잠금과 호출 제한이 비활성화됩니다", zap.Error(err))
		rdb = nil
	} else {
		locker = rdb
		limiter = rdb
	}

	// 6. 의존성 주입: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, locker, logger)
	h := handler.NewHandler(svc, cfg.Calculation.DefaultYear)

	// 6.1 공식 캐시 예열 (실패해도 첫 계산 때 다시 적재)
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Formulas.Load(warmCtx); err != nil {
		logger.Warn("환산 공식 캐시 예열 실패", zap.Error(err))
	}
	warmCancel()

	// 7. 라우터
	engine := router.Setup(cfg, h, limiter, logger)

	// 8. HTTP 서버 (우아한 종료)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 서버 시작", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 서버 오류", zap.Error(err))
		}
	}()

	// 9. 종료 신호 대기
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("종료 신호 수신, 우아한 종료 시작", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("서버 종료 오류", zap.Error(err))
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("트레이싱 종료 오류", zap.Error(err))
		}
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("데이터베이스 연결 종료 오류", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("서버 종료 완료")
}
