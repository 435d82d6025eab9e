package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 모든 Repository 의 집합
type Repository struct {
	Formula          FormulaRepository
	SubjectGrade     SubjectGradeRepository
	RecruitmentUnit  RecruitmentUnitRepository
	UniversityScore  UniversityScoreRepository
	RecruitmentScore RecruitmentScoreRepository

	db *gorm.DB
}

// NewRepository Repository 집합 생성
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Formula:          NewFormulaRepo(db),
		SubjectGrade:     NewSubjectGradeRepo(db),
		RecruitmentUnit:  NewRecruitmentUnitRepo(db),
		UniversityScore:  NewUniversityScoreRepo(db),
		RecruitmentScore: NewRecruitmentScoreRepo(db),
		db:               db,
	}
}

// WithTx 같은 트랜잭션을 공유하는 Repository 집합
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction fn 이 에러를 반환하면 롤백한다
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
