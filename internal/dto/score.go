package dto

import "encoding/json"

// ── 환산 점수 모듈 DTO ──

// CalculateScoresRequest 환산 점수 계산 요청
// university_names 가 비어 있으면 해당 연도의 모든 공식을 대상으로 한다
type CalculateScoresRequest struct {
	UniversityNames []string `json:"university_names" binding:"omitempty,dive,min=1,max=100"`
	Recalculate     bool     `json:"recalculate"`
	Year            int      `json:"year"             binding:"omitempty,min=2000,max=2100"`
}

// DeleteScoresRequest 저장된 결과 삭제 (쿼리 파라미터 university 반복)
type DeleteScoresRequest struct {
	UniversityNames []string `form:"university"`
}

// CategoryScoreResponse 교과 분류별 점수
type CategoryScoreResponse struct {
	Category     string   `json:"category"`
	Score        float64  `json:"score"`
	AverageGrade *float64 `json:"average_grade,omitempty"`
}

// UniversityScoreResponse 대학별 환산 결과
type UniversityScoreResponse struct {
	ID                string                  `json:"id,omitempty"`
	StudentID         string                  `json:"student_id"`
	UniversityName    string                  `json:"university_name"`
	Year              int                     `json:"year"`
	Categories        []CategoryScoreResponse `json:"categories"`
	AverageGrade      *float64                `json:"average_grade,omitempty"`
	FirstYearAverage  *float64                `json:"first_year_average,omitempty"`
	SecondYearAverage *float64                `json:"second_year_average,omitempty"`
	ThirdYearAverage  *float64                `json:"third_year_average,omitempty"`
	YearWeightedScore float64                 `json:"year_weighted_score"`
	AttendanceScore   float64                 `json:"attendance_score"`
	VolunteerScore    float64                 `json:"volunteer_score"`
	ConvertedScore    float64                 `json:"converted_score"`
	MaxScore          float64                 `json:"max_score"`
	ScorePercentage   float64                 `json:"score_percentage"`
	ReflectedSubjects json.RawMessage         `json:"reflected_subjects,omitempty"`
	Success           bool                    `json:"success"`
	FailureReason     *string                 `json:"failure_reason,omitempty"`
	CalculatedAt      string                  `json:"calculated_at"`
}

// RecruitmentScoreResponse 모집단위별 위험도
type RecruitmentScoreResponse struct {
	ID                string   `json:"id,omitempty"`
	RecruitmentUnitID string   `json:"recruitment_unit_id"`
	UniversityName    string   `json:"university_name"`
	Year              int      `json:"year"`
	UnitName          string   `json:"unit_name"`
	AdmissionName     string   `json:"admission_name"`
	AdmissionType     string   `json:"admission_type"`
	Region            string   `json:"region"`
	RecruitmentCount  int      `json:"recruitment_count"`
	ConvertedScore    float64  `json:"converted_score"`
	AverageGrade      *float64 `json:"average_grade,omitempty"`
	RiskScore         *int     `json:"risk_score,omitempty"`
	GradeCut50        *float64 `json:"grade_cut_50,omitempty"`
	GradeCut70        *float64 `json:"grade_cut_70,omitempty"`
	GradeDifference   *float64 `json:"grade_difference,omitempty"`
	CalculatedAt      string   `json:"calculated_at"`
}

// CalculationResult 일괄 계산 요약
type CalculationResult struct {
	Success           bool                       `json:"success"`
	Message           string                     `json:"message"`
	StudentID         string                     `json:"student_id"`
	Year              int                        `json:"year"`
	TotalUniversities int                        `json:"total_universities"`
	SuccessCount      int                        `json:"success_count"`
	FailureCount      int                        `json:"failure_count"`
	Interrupted       bool                       `json:"interrupted,omitempty"`
	UniversityScores  []UniversityScoreResponse  `json:"university_scores"`
	RecruitmentScores []RecruitmentScoreResponse `json:"recruitment_scores"`
	CalculatedAt      string                     `json:"calculated_at"`
}

// DeleteScoresResponse 삭제 건수
type DeleteScoresResponse struct {
	UniversityScores  int64 `json:"university_scores"`
	RecruitmentScores int64 `json:"recruitment_scores"`
}
