package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"score-engine/internal/dto"
	"score-engine/internal/service"
	"score-engine/pkg/response"
)

// ScoreHandler 환산 점수 모듈 HTTP 처리기
type ScoreHandler struct {
	calcSvc service.CalculationService
}

// NewScoreHandler ScoreHandler 생성
func NewScoreHandler(calcSvc service.CalculationService) *ScoreHandler {
	return &ScoreHandler{calcSvc: calcSvc}
}

// studentIDParam 경로의 학생 ID 를 꺼낸다. 비어 있으면 400 을 쓰고 false
func studentIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.BadRequest(c, 10001, "학생 ID 가 비어 있습니다")
		return "", false
	}
	return id, true
}

// Calculate 학생 환산 점수 계산 및 저장
// POST /api/v1/students/:id/scores/calculate
// 본문이 없으면 해당 연도 전체 공식으로 계산한다
func (h *ScoreHandler) Calculate(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	var req dto.CalculateScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "요청 파라미터 오류: "+err.Error())
		return
	}

	result, err := h.calcSvc.CalculateAndSaveScores(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, result)
}

// GetScores 저장된 대학별 환산 결과 조회
// GET /api/v1/students/:id/scores
func (h *ScoreHandler) GetScores(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	scores, err := h.calcSvc.GetSavedScores(c.Request.Context(), studentID)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, scores)
}

// GetRecruitmentScores 저장된 모집단위별 위험도 조회
// GET /api/v1/students/:id/recruitment-scores
func (h *ScoreHandler) GetRecruitmentScores(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	scores, err := h.calcSvc.GetSavedRecruitmentScores(c.Request.Context(), studentID)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, scores)
}

// DeleteScores 저장된 결과 삭제
// DELETE /api/v1/students/:id/scores?university=A&university=B
// university 가 없으면 학생의 결과 전체를 삭제한다
func (h *ScoreHandler) DeleteScores(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	var req dto.DeleteScoresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "요청 파라미터 오류: "+err.Error())
		return
	}

	result, err := h.calcSvc.DeleteScores(c.Request.Context(), studentID, req.UniversityNames)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScoreError 환산 점수 모듈 오류를 HTTP 응답으로 변환
func (h *ScoreHandler) handleScoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCalculationInProgress):
		response.Conflict(c, 20101, "해당 학생의 계산이 이미 진행 중입니다")
	default:
		response.InternalError(c)
	}
}
