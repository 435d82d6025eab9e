package dto

// ── 환산 공식 모듈 DTO ──

// UpsertFormulaRequest 공식 등록/수정 요청. (university_name, year) 기준으로 덮어쓴다
type UpsertFormulaRequest struct {
	UniversityName        string             `json:"university_name"         binding:"required,max=100"`
	Year                  int                `json:"year"                    binding:"required,min=2000,max=2100"`
	FirstYearRatio        float64            `json:"first_year_ratio"        binding:"min=0,max=100"`
	SecondYearRatio       float64            `json:"second_year_ratio"       binding:"min=0,max=100"`
	ThirdYearRatio        float64            `json:"third_year_ratio"        binding:"min=0,max=100"`
	KoreanRatio           float64            `json:"korean_ratio"            binding:"min=0,max=100"`
	EnglishRatio          float64            `json:"english_ratio"           binding:"min=0,max=100"`
	MathRatio             float64            `json:"math_ratio"              binding:"min=0,max=100"`
	SocialRatio           float64            `json:"social_ratio"            binding:"min=0,max=100"`
	ScienceRatio          float64            `json:"science_ratio"           binding:"min=0,max=100"`
	EtcRatio              float64            `json:"etc_ratio"               binding:"min=0,max=100"`
	ConversionTable       map[string]float64 `json:"conversion_table"`
	CareerConversionTable map[string]int     `json:"career_conversion_table"`
	AttendanceScore       float64            `json:"attendance_score"        binding:"min=0"`
	VolunteerScore        float64            `json:"volunteer_score"         binding:"min=0"`
	MaxScore              float64            `json:"max_score"               binding:"required,gt=0"`
	IsActive              *bool              `json:"is_active"`
}

// FormulaListRequest 공식 목록 조회 (year 0 이면 전체)
type FormulaListRequest struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
}

// FormulaResponse 공식 정보
type FormulaResponse struct {
	ID                    string         `json:"id"`
	UniversityName        string         `json:"university_name"`
	Year                  int            `json:"year"`
	FirstYearRatio        float64        `json:"first_year_ratio"`
	SecondYearRatio       float64        `json:"second_year_ratio"`
	ThirdYearRatio        float64        `json:"third_year_ratio"`
	KoreanRatio           float64        `json:"korean_ratio"`
	EnglishRatio          float64        `json:"english_ratio"`
	MathRatio             float64        `json:"math_ratio"`
	SocialRatio           float64        `json:"social_ratio"`
	ScienceRatio          float64        `json:"science_ratio"`
	EtcRatio              float64        `json:"etc_ratio"`
	ConversionTable       map[string]any `json:"conversion_table,omitempty"`
	CareerConversionTable map[string]any `json:"career_conversion_table,omitempty"`
	AttendanceScore       float64        `json:"attendance_score"`
	VolunteerScore        float64        `json:"volunteer_score"`
	MaxScore              float64        `json:"max_score"`
	IsActive              bool           `json:"is_active"`
	UpdatedAt             string         `json:"updated_at,omitempty"`
}

// FormulaCacheResponse 공식 캐시 상태
type FormulaCacheResponse struct {
	Loaded   bool   `json:"loaded"`
	Entries  int    `json:"entries"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// ReloadFormulaResponse 캐시 재적재 결과
type ReloadFormulaResponse struct {
	Entries int `json:"entries"`
}
