package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"score-engine/config"
	"score-engine/internal/repository"
	"score-engine/internal/service"
	"score-engine/pkg/database"
	applogger "score-engine/pkg/logger"
	"score-engine/pkg/redis"
)

//nolint:gochecknoglobals // cobra 관례
var configFile string

//nolint:gochecknoglobals // cobra 관례
var rootCmd = &cobra.Command{
	Use:   "scorectl",
	Short: "내신 환산 점수 엔진 운영 도구",
	Long: `scorectl 은 서버를 띄우지 않고 환산 점수 엔진을 직접 호출한다.

학생 한 명의 점수를 계산하거나, 공식 캐시를 다시 적재하거나,
저장된 결과를 엑셀로 내보내거나, 데이터베이스 마이그레이션을 적용할 수 있다.`,
	SilenceUsage: true,
}

// Execute 루트 명령 실행
// 인터럽트를 받으면 진행 중인 계산을 취소한다
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // cobra 관례
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "설정 파일 경로 (기본: ./config/config.yaml)")
}

// app 명령 실행에 필요한 의존성 묶음
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	svc    *service.Service
}

// openApp 설정, 로거, DB 를 열고 Service 를 조립한다
// withRedis 가 false 이거나 연결에 실패하면 잠금 없이 동작한다
func openApp(withRedis bool) (a *app, err error) {
	var cfg *config.Config
	cfg, err = config.Load(configFile)
	if err != nil {
		err = errors.Wrap(err, "설정 로드 실패")
		return a, err
	}

	var logger *zap.Logger
	logger, err = applogger.NewLogger(&cfg.Log)
	if err != nil {
		err = errors.Wrap(err, "로거 초기화 실패")
		return a, err
	}

	var db *gorm.DB
	db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		err = errors.Wrap(err, "데이터베이스 연결 실패")
		return a, err
	}

	a = &app{cfg: cfg, logger: logger, db: db}

	var locker service.CalculationLocker
	if withRedis {
		rdb, rerr := redis.NewClient(&cfg.Redis, logger)
		if rerr != nil {
			logger.Warn("Redis 연결 실패, 잠금 없이 진행", zap.Error(rerr))
		} else {
			a.rdb = rdb
			locker = rdb
		}
	}

	a.svc = service.NewService(cfg, repository.NewRepository(db), locker, logger)
	return a, err
}

func (a *app) close() {
	if a == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.logger.Sync()
}

// commandContext 명령용 컨텍스트 (Ctrl+C 로 취소)
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
