package model

// RecruitmentUnit 모집단위 (recruitment_units)
// 전년도 입결(50%/70% 컷)을 함께 보관한다
type RecruitmentUnit struct {
	RecruitmentUnitID  string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"recruitment_unit_id"`
	UniversityName     string   `gorm:"type:varchar(100);not null"                     json:"university_name"`
	Year               int      `gorm:"not null"                                       json:"year"`
	UnitName           string   `gorm:"type:varchar(200);not null"                     json:"unit_name"`
	AdmissionName      string   `gorm:"type:varchar(200);not null;default:''"          json:"admission_name"`
	AdmissionType      string   `gorm:"type:varchar(50);not null;default:''"           json:"admission_type"`       // 학생부교과, 학생부종합 …
	AdmissionBasicType string   `gorm:"type:varchar(20);not null;default:''"           json:"admission_basic_type"` // 교과 | 종합 | 논술 …
	Region             string   `gorm:"type:varchar(50);not null;default:''"           json:"region"`
	RecruitmentCount   int      `gorm:"not null;default:0"                             json:"recruitment_count"`
	GradeCut50         *float64 `gorm:"type:numeric(4,2)"                              json:"grade_cut_50,omitempty"`
	GradeCut70         *float64 `gorm:"type:numeric(4,2)"                              json:"grade_cut_70,omitempty"`
	BaseModel
}

// TableName 테이블 이름
func (RecruitmentUnit) TableName() string { return "recruitment_units" }
