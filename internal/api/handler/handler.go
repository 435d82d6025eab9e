package handler

import "score-engine/internal/service"

// Handler 모든 Handler 의 집합
type Handler struct {
	Score   *ScoreHandler
	Formula *FormulaHandler
	Export  *ExportHandler
}

// NewHandler Handler 집합 생성
// defaultYear 는 공식 단건 조회에서 year 가 없을 때 쓰는 연도
func NewHandler(svc *service.Service, defaultYear int) *Handler {
	return &Handler{
		Score:   NewScoreHandler(svc.Calculation),
		Formula: NewFormulaHandler(svc.Formula, svc.Calculation, defaultYear),
		Export:  NewExportHandler(svc.Export),
	}
}
