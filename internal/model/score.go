package model

import (
	"time"

	"gorm.io/datatypes"
)

// UniversityCalculatedScore 대학별 환산 결과 (university_calculated_scores)
// (student_id, university_name) 유일. 재계산 시마다 덮어쓴다
type UniversityCalculatedScore struct {
	ScoreID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"score_id"`
	StudentID      string `gorm:"type:varchar(64);not null;uniqueIndex:uq_university_scores_student_university" json:"student_id"`
	UniversityName string `gorm:"type:varchar(100);not null;uniqueIndex:uq_university_scores_student_university" json:"university_name"`
	Year           int    `gorm:"not null" json:"year"`

	KoreanScore  float64 `gorm:"type:numeric(10,2);not null;default:0" json:"korean_score"`
	EnglishScore float64 `gorm:"type:numeric(10,2);not null;default:0" json:"english_score"`
	MathScore    float64 `gorm:"type:numeric(10,2);not null;default:0" json:"math_score"`
	SocialScore  float64 `gorm:"type:numeric(10,2);not null;default:0" json:"social_score"`
	ScienceScore float64 `gorm:"type:numeric(10,2);not null;default:0" json:"science_score"`
	EtcScore     float64 `gorm:"type:numeric(10,2);not null;default:0" json:"etc_score"`

	KoreanAverageGrade  *float64 `gorm:"type:numeric(4,2)" json:"korean_average_grade,omitempty"`
	EnglishAverageGrade *float64 `gorm:"type:numeric(4,2)" json:"english_average_grade,omitempty"`
	MathAverageGrade    *float64 `gorm:"type:numeric(4,2)" json:"math_average_grade,omitempty"`
	SocialAverageGrade  *float64 `gorm:"type:numeric(4,2)" json:"social_average_grade,omitempty"`
	ScienceAverageGrade *float64 `gorm:"type:numeric(4,2)" json:"science_average_grade,omitempty"`
	EtcAverageGrade     *float64 `gorm:"type:numeric(4,2)" json:"etc_average_grade,omitempty"`
	AverageGrade        *float64 `gorm:"type:numeric(4,2)" json:"average_grade,omitempty"`

	FirstYearAverage  *float64 `gorm:"type:numeric(4,2)" json:"first_year_average,omitempty"`
	SecondYearAverage *float64 `gorm:"type:numeric(4,2)" json:"second_year_average,omitempty"`
	ThirdYearAverage  *float64 `gorm:"type:numeric(4,2)" json:"third_year_average,omitempty"`

	YearWeightedScore float64 `gorm:"type:numeric(10,2);not null;default:0" json:"year_weighted_score"`
	AttendanceScore   float64 `gorm:"type:numeric(10,2);not null;default:0" json:"attendance_score"`
	VolunteerScore    float64 `gorm:"type:numeric(10,2);not null;default:0" json:"volunteer_score"`
	ConvertedScore    float64 `gorm:"type:numeric(10,2);not null;default:0" json:"converted_score"`
	MaxScore          float64 `gorm:"type:numeric(10,2);not null;default:0" json:"max_score"`
	ScorePercentage   float64 `gorm:"type:numeric(6,2);not null;default:0"  json:"score_percentage"`

	ReflectedSubjects datatypes.JSON `gorm:"type:jsonb" json:"reflected_subjects,omitempty"`

	Success       bool      `gorm:"not null;default:false"             json:"success"`
	FailureReason *string   `gorm:"type:text"                          json:"failure_reason,omitempty"`
	CalculatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"calculated_at"`
	BaseModel
}

// TableName 테이블 이름
func (UniversityCalculatedScore) TableName() string { return "university_calculated_scores" }

// RecruitmentScoreResult 모집단위별 위험도 결과 (recruitment_score_results)
// (student_id, recruitment_unit_id) 유일
type RecruitmentScoreResult struct {
	ResultID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"result_id"`
	StudentID         string `gorm:"type:varchar(64);not null;uniqueIndex:uq_recruitment_results_student_unit" json:"student_id"`
	RecruitmentUnitID string `gorm:"type:uuid;not null;uniqueIndex:uq_recruitment_results_student_unit"        json:"recruitment_unit_id"`

	UniversityName   string `gorm:"type:varchar(100);not null"            json:"university_name"`
	Year             int    `gorm:"not null"                              json:"year"`
	UnitName         string `gorm:"type:varchar(200);not null"            json:"unit_name"`
	AdmissionName    string `gorm:"type:varchar(200);not null;default:''" json:"admission_name"`
	AdmissionType    string `gorm:"type:varchar(50);not null;default:''"  json:"admission_type"`
	Region           string `gorm:"type:varchar(50);not null;default:''"  json:"region"`
	RecruitmentCount int    `gorm:"not null;default:0"                    json:"recruitment_count"`

	ConvertedScore  float64  `gorm:"type:numeric(10,2);not null;default:0" json:"converted_score"`
	AverageGrade    *float64 `gorm:"type:numeric(4,2)"                     json:"average_grade,omitempty"`
	RiskScore       *int     `json:"risk_score,omitempty"` // -15 ~ 10, 양수일수록 안정
	GradeCut50      *float64 `gorm:"type:numeric(4,2)"                     json:"grade_cut_50,omitempty"`
	GradeCut70      *float64 `gorm:"type:numeric(4,2)"                     json:"grade_cut_70,omitempty"`
	GradeDifference *float64 `gorm:"type:numeric(5,2)"                     json:"grade_difference,omitempty"`

	CalculatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"calculated_at"`
	BaseModel
}

// TableName 테이블 이름
func (RecruitmentScoreResult) TableName() string { return "recruitment_score_results" }
