package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"score-engine/internal/model"
)

// FormulaRepository 환산 공식 데이터 접근 인터페이스
type FormulaRepository interface {
	ListActive(ctx context.Context) ([]model.Formula, error)
	List(ctx context.Context, year int) ([]model.Formula, error)
	GetByUniversityYear(ctx context.Context, universityName string, year int) (*model.Formula, error)
	Upsert(ctx context.Context, formula *model.Formula) error
}

type formulaRepo struct {
	db *gorm.DB
}

// NewFormulaRepo FormulaRepository 생성
func NewFormulaRepo(db *gorm.DB) FormulaRepository {
	return &formulaRepo{db: db}
}

// ListActive 캐시 적재용 전체 활성 공식
func (r *formulaRepo) ListActive(ctx context.Context) ([]model.Formula, error) {
	var formulas []model.Formula
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("year DESC, university_name ASC").
		Find(&formulas).Error
	return formulas, err
}

// List year 가 0 이면 전체 연도
func (r *formulaRepo) List(ctx context.Context, year int) ([]model.Formula, error) {
	var formulas []model.Formula
	query := r.db.WithContext(ctx).Model(&model.Formula{})
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	err := query.Order("year DESC, university_name ASC").Find(&formulas).Error
	return formulas, err
}

func (r *formulaRepo) GetByUniversityYear(ctx context.Context, universityName string, year int) (*model.Formula, error) {
	var formula model.Formula
	err := r.db.WithContext(ctx).
		Where("university_name = ? AND year = ?", universityName, year).
		First(&formula).Error
	if err != nil {
		return nil, err
	}
	return &formula, nil
}

// Upsert (university_name, year) 충돌 시 비율·변환표를 갱신한다
func (r *formulaRepo) Upsert(ctx context.Context, formula *model.Formula) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "university_name"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"first_year_ratio", "second_year_ratio", "third_year_ratio",
				"korean_ratio", "english_ratio", "math_ratio",
				"social_ratio", "science_ratio", "etc_ratio",
				"conversion_table", "career_conversion_table",
				"attendance_score", "volunteer_score", "max_score",
				"is_active", "updated_at",
			}),
		}).
		Create(formula).Error
}
