package model

import (
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// Formula 대학별·연도별 환산 공식 (score_formulas)
//
// 비율은 모두 0–100 백분율이며 합이 100 일 필요는 없다.
// ConversionTable: 등급("1".."9") → 환산 점수
// CareerConversionTable: 성취도("A"/"B"/"C") → 등급
type Formula struct {
	FormulaID             string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"formula_id"`
	UniversityName        string            `gorm:"type:varchar(100);not null;uniqueIndex:uq_score_formulas_university_year" json:"university_name"`
	Year                  int               `gorm:"not null;uniqueIndex:uq_score_formulas_university_year"                   json:"year"`
	FirstYearRatio        float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"first_year_ratio"`
	SecondYearRatio       float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"second_year_ratio"`
	ThirdYearRatio        float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"third_year_ratio"`
	KoreanRatio           float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"korean_ratio"`
	EnglishRatio          float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"english_ratio"`
	MathRatio             float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"math_ratio"`
	SocialRatio           float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"social_ratio"`
	ScienceRatio          float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"science_ratio"`
	EtcRatio              float64           `gorm:"type:numeric(6,2);not null;default:0"  json:"etc_ratio"`
	ConversionTable       datatypes.JSONMap `gorm:"type:jsonb"                            json:"conversion_table,omitempty"`
	CareerConversionTable datatypes.JSONMap `gorm:"type:jsonb"                            json:"career_conversion_table,omitempty"`
	AttendanceScore       float64           `gorm:"type:numeric(10,2);not null;default:0" json:"attendance_score"`
	VolunteerScore        float64           `gorm:"type:numeric(10,2);not null;default:0" json:"volunteer_score"`
	MaxScore              float64           `gorm:"type:numeric(10,2);not null"           json:"max_score"`
	IsActive              bool              `gorm:"not null"                              json:"is_active"`
	BaseModel
}

// TableName 테이블 이름
func (Formula) TableName() string { return "score_formulas" }

// YearRatio 학년(1–3)별 반영 비율, 범위를 벗어나면 0
func (f *Formula) YearRatio(academicYear int) float64 {
	switch academicYear {
	case 1:
		return f.FirstYearRatio
	case 2:
		return f.SecondYearRatio
	case 3:
		return f.ThirdYearRatio
	}
	return 0
}

// ConversionScore 공식 자체 변환표에서 등급 점수를 찾는다
func (f *Formula) ConversionScore(grade int) (float64, bool) {
	if f == nil || f.ConversionTable == nil {
		return 0, false
	}
	v, ok := f.ConversionTable[strconv.Itoa(grade)]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// CareerGrade 공식 자체 성취도 변환표에서 등급을 찾는다
func (f *Formula) CareerGrade(achievement string) (int, bool) {
	if f == nil || f.CareerConversionTable == nil {
		return 0, false
	}
	key := strings.ToUpper(strings.TrimSpace(achievement))
	v, ok := f.CareerConversionTable[key]
	if !ok {
		return 0, false
	}
	n, ok := toFloat(v)
	if !ok || n != float64(int(n)) {
		return 0, false
	}
	return int(n), true
}

// jsonb 값은 float64 로 역직렬화되지만 코드에서 만든 맵은 int 나 문자열일 수 있다
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
