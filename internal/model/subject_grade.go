package model

// SubjectGrade 학기별 과목 성적 (subject_grades)
// 학생부 수집 모듈이 기록하며 계산 엔진은 읽기만 한다
type SubjectGrade struct {
	SubjectGradeID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_grade_id"`
	StudentID       string  `gorm:"type:varchar(64);not null;index"                json:"student_id"`
	SubjectName     string  `gorm:"type:varchar(100);not null"                     json:"subject_name"`
	MainSubjectName string  `gorm:"type:varchar(100);not null;default:''"          json:"main_subject_name"` // 교과 분류 입력
	Semester        string  `gorm:"type:varchar(10);not null"                      json:"semester"`          // "1-1", "2-2" …
	Unit            string  `gorm:"type:varchar(10);not null;default:'1'"          json:"unit"`
	Grade           string  `gorm:"type:varchar(10);not null;default:''"           json:"grade"`
	Achievement     *string `gorm:"type:varchar(10)"                               json:"achievement,omitempty"` // 진로선택 과목 A/B/C
	BaseModel
}

// TableName 테이블 이름
func (SubjectGrade) TableName() string { return "subject_grades" }
