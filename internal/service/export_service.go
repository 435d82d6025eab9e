package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"score-engine/internal/model"
	"score-engine/internal/repository"
)

// ── 내보내기 모듈 업무 오류 ──

var (
	ErrExportNoScores     = errors.New("저장된 환산 결과가 없습니다")
	ErrExportGenerateFail = errors.New("엑셀 파일 생성 실패")
)

// ExportService 내보내기 업무 인터페이스
//
// 설계 메모：
//   - 저장된 결과만 내보내며 계산은 다시 하지 않는다
//   - 시트 두 개: "대학별 환산점수", "모집단위별 위험도"
//   - bytes.Buffer 로 반환하고 Handler 가 응답 헤더를 설정한다
type ExportService interface {
	ExportScores(ctx context.Context, studentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService ExportService 생성
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const (
	universitySheet  = "대학별 환산점수"
	recruitmentSheet = "모집단위별 위험도"
)

var universityHeaders = []string{
	"대학", "연도", "국어", "영어", "수학", "사회", "과학", "기타",
	"학년 가중", "출결", "봉사", "환산 점수", "만점", "백분율", "평균 등급", "성공", "실패 사유",
}

var recruitmentHeaders = []string{
	"대학", "연도", "모집단위", "전형명", "전형 유형", "지역", "모집 인원",
	"환산 점수", "평균 등급", "50% 컷", "70% 컷", "등급 차이", "위험도",
}

// ═══════════════════════════════════════════════════════════
// ExportScores 저장된 환산 결과를 엑셀로 내보낸다
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportScores(ctx context.Context, studentID string) (*bytes.Buffer, string, error) {
	// 1. 결과 조회
	scores, err := s.repo.UniversityScore.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("대학별 결과 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", err
	}
	if len(scores) == 0 {
		return nil, "", ErrExportNoScores
	}
	recruitment, err := s.repo.RecruitmentScore.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("모집단위 결과 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", err
	}

	// 2. 엑셀 생성
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(universitySheet)
	if err != nil {
		s.logger.Error("시트 생성 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(recruitmentSheet); err != nil {
		s.logger.Error("시트 생성 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeHeader(f, universitySheet, universityHeaders, headerStyle)
	for i := range scores {
		writeRow(f, universitySheet, i+2, universityRow(&scores[i]))
	}
	f.SetColWidth(universitySheet, "A", "A", 20)
	f.SetColWidth(universitySheet, colName(len(universityHeaders)-1), colName(len(universityHeaders)-1), 40)

	writeHeader(f, recruitmentSheet, recruitmentHeaders, headerStyle)
	for i := range recruitment {
		writeRow(f, recruitmentSheet, i+2, recruitmentRow(&recruitment[i]))
	}
	f.SetColWidth(recruitmentSheet, "A", "A", 20)
	f.SetColWidth(recruitmentSheet, "C", "D", 24)

	// 3. buffer 에 쓰기
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("엑셀 쓰기 실패", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("환산점수_%s.xlsx", studentID)
	return buf, filename, nil
}

// ── 도우미 ──

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, cell(colName(i), row), v)
	}
}

func universityRow(sc *model.UniversityCalculatedScore) []interface{} {
	reason := ""
	if sc.FailureReason != nil {
		reason = *sc.FailureReason
	}
	success := "X"
	if sc.Success {
		success = "O"
	}
	return []interface{}{
		sc.UniversityName, sc.Year,
		sc.KoreanScore, sc.EnglishScore, sc.MathScore, sc.SocialScore, sc.ScienceScore, sc.EtcScore,
		sc.YearWeightedScore, sc.AttendanceScore, sc.VolunteerScore,
		sc.ConvertedScore, sc.MaxScore, sc.ScorePercentage,
		optionalFloat(sc.AverageGrade), success, reason,
	}
}

func recruitmentRow(r *model.RecruitmentScoreResult) []interface{} {
	risk := interface{}("-")
	if r.RiskScore != nil {
		risk = *r.RiskScore
	}
	return []interface{}{
		r.UniversityName, r.Year, r.UnitName, r.AdmissionName, r.AdmissionType, r.Region, r.RecruitmentCount,
		r.ConvertedScore, optionalFloat(r.AverageGrade),
		optionalFloat(r.GradeCut50), optionalFloat(r.GradeCut70), optionalFloat(r.GradeDifference),
		risk,
	}
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
