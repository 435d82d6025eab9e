package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"score-engine/internal/service"
	"score-engine/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 내보내기 모듈 HTTP 처리기
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler ExportHandler 생성
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportScores 저장된 환산 결과를 엑셀로 내려받는다
// GET /api/v1/students/:id/scores/export
func (h *ExportHandler) ExportScores(c *gin.Context) {
	studentID, ok := studentIDParam(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportScores(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 다운로드 응답 헤더
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoScores):
		response.NotFound(c, 20301, "저장된 환산 결과가 없습니다")
	default:
		response.InternalError(c)
	}
}
