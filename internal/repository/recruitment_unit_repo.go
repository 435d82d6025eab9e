package repository

import (
	"context"

	"gorm.io/gorm"

	"score-engine/internal/model"
)

// RecruitmentUnitRepository 모집단위 조회 인터페이스 (읽기 전용)
type RecruitmentUnitRepository interface {
	ListByUniversities(ctx context.Context, universityNames []string, year int, admissionBasicType string) ([]model.RecruitmentUnit, error)
}

type recruitmentUnitRepo struct {
	db *gorm.DB
}

// NewRecruitmentUnitRepo RecruitmentUnitRepository 생성
func NewRecruitmentUnitRepo(db *gorm.DB) RecruitmentUnitRepository {
	return &recruitmentUnitRepo{db: db}
}

// ListByUniversities 대학 이름·연도·전형 기본 유형이 모두 일치하는 모집단위
func (r *recruitmentUnitRepo) ListByUniversities(ctx context.Context, universityNames []string, year int, admissionBasicType string) ([]model.RecruitmentUnit, error) {
	if len(universityNames) == 0 {
		return []model.RecruitmentUnit{}, nil
	}
	var units []model.RecruitmentUnit
	err := r.db.WithContext(ctx).
		Where("university_name IN ?", universityNames).
		Where("year = ? AND admission_basic_type = ?", year, admissionBasicType).
		Order("university_name ASC, unit_name ASC").
		Find(&units).Error
	return units, err
}
