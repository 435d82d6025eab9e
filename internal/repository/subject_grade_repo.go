package repository

import (
	"context"

	"gorm.io/gorm"

	"score-engine/internal/model"
)

// SubjectGradeRepository 과목 성적 조회 인터페이스 (읽기 전용)
type SubjectGradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]model.SubjectGrade, error)
}

type subjectGradeRepo struct {
	db *gorm.DB
}

// NewSubjectGradeRepo SubjectGradeRepository 생성
func NewSubjectGradeRepo(db *gorm.DB) SubjectGradeRepository {
	return &subjectGradeRepo{db: db}
}

func (r *subjectGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]model.SubjectGrade, error) {
	var grades []model.SubjectGrade
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("semester ASC, subject_name ASC").
		Find(&grades).Error
	return grades, err
}
