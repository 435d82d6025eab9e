package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"score-engine/internal/dto"
	"score-engine/internal/service"
	"score-engine/pkg/response"
)

// FormulaHandler 환산 공식 모듈 HTTP 처리기
type FormulaHandler struct {
	formulaSvc  service.FormulaService
	calcSvc     service.CalculationService
	defaultYear int
}

// NewFormulaHandler FormulaHandler 생성
func NewFormulaHandler(formulaSvc service.FormulaService, calcSvc service.CalculationService, defaultYear int) *FormulaHandler {
	return &FormulaHandler{formulaSvc: formulaSvc, calcSvc: calcSvc, defaultYear: defaultYear}
}

// Upsert 공식 등록/수정
// POST /api/v1/formulas
func (h *FormulaHandler) Upsert(c *gin.Context) {
	var req dto.UpsertFormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "요청 파라미터 오류: "+err.Error())
		return
	}

	result, err := h.formulaSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handleFormulaError(c, err)
		return
	}

	response.OK(c, result)
}

// List 공식 목록
// GET /api/v1/formulas?year=2025
func (h *FormulaHandler) List(c *gin.Context) {
	var req dto.FormulaListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "요청 파라미터 오류: "+err.Error())
		return
	}

	list, err := h.formulaSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleFormulaError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 대학 공식 단건 조회
// GET /api/v1/formulas/:university?year=2025
func (h *FormulaHandler) Get(c *gin.Context) {
	university := c.Param("university")
	if university == "" {
		response.BadRequest(c, 10001, "대학명이 비어 있습니다")
		return
	}

	year := h.defaultYear
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			response.BadRequest(c, 10001, "year 형식이 올바르지 않습니다")
			return
		}
		year = v
	}

	result, err := h.formulaSvc.Get(c.Request.Context(), university, year)
	if err != nil {
		h.handleFormulaError(c, err)
		return
	}

	response.OK(c, result)
}

// Reload 공식 캐시 재적재
// POST /api/v1/formulas/reload
func (h *FormulaHandler) Reload(c *gin.Context) {
	n, err := h.calcSvc.ReloadFormulaCache(c.Request.Context())
	if err != nil {
		h.handleFormulaError(c, err)
		return
	}

	response.OK(c, &dto.ReloadFormulaResponse{Entries: n})
}

// CacheStats 공식 캐시 상태
// GET /api/v1/formulas/cache
func (h *FormulaHandler) CacheStats(c *gin.Context) {
	response.OK(c, h.formulaSvc.CacheStats(c.Request.Context()))
}

// handleFormulaError 환산 공식 모듈 오류를 HTTP 응답으로 변환
func (h *FormulaHandler) handleFormulaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFormulaNotFound):
		response.NotFound(c, 20201, "환산 공식을 찾을 수 없습니다")
	case errors.Is(err, service.ErrInvalidFormula):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 20202, "환산 공식이 올바르지 않습니다", err.Error())
	default:
		response.InternalError(c)
	}
}
