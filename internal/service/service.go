package service

import (
	"go.uber.org/zap"

	"score-engine/config"
	"score-engine/internal/repository"
)

// Service 모든 Service 의 집합
type Service struct {
	Formulas    FormulaStore
	Formula     FormulaService
	Calculation CalculationService
	Export      ExportService
}

// NewService Service 집합 생성
// locker 는 Redis 를 쓸 수 없으면 nil 로 넘긴다
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker CalculationLocker,
	logger *zap.Logger,
) *Service {
	store := NewFormulaStore(repo.Formula, logger)
	return &Service{
		Formulas:    store,
		Formula:     NewFormulaService(repo, store, logger),
		Calculation: NewCalculationService(&cfg.Calculation, repo, store, locker, logger),
		Export:      NewExportService(repo, logger),
	}
}
