package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"score-engine/internal/model"
)

// ── 대학별 환산 결과 ──

// UniversityScoreRepository 대학별 환산 결과 접근 인터페이스
type UniversityScoreRepository interface {
	UpsertBatch(ctx context.Context, scores []model.UniversityCalculatedScore) error
	ListByStudent(ctx context.Context, studentID string) ([]model.UniversityCalculatedScore, error)
	DeleteByStudent(ctx context.Context, studentID string, universityNames []string) (int64, error)
}

type universityScoreRepo struct {
	db *gorm.DB
}

// NewUniversityScoreRepo UniversityScoreRepository 생성
func NewUniversityScoreRepo(db *gorm.DB) UniversityScoreRepository {
	return &universityScoreRepo{db: db}
}

var universityScoreColumns = []string{
	"year",
	"korean_score", "english_score", "math_score", "social_score", "science_score", "etc_score",
	"korean_average_grade", "english_average_grade", "math_average_grade",
	"social_average_grade", "science_average_grade", "etc_average_grade", "average_grade",
	"first_year_average", "second_year_average", "third_year_average",
	"year_weighted_score", "attendance_score", "volunteer_score",
	"converted_score", "max_score", "score_percentage",
	"reflected_subjects", "success", "failure_reason", "calculated_at", "updated_at",
}

// UpsertBatch (student_id, university_name) 충돌 시 결과를 덮어쓴다
func (r *universityScoreRepo) UpsertBatch(ctx context.Context, scores []model.UniversityCalculatedScore) error {
	if len(scores) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "university_name"}},
			DoUpdates: clause.AssignmentColumns(universityScoreColumns),
		}).
		Create(&scores).Error
}

func (r *universityScoreRepo) ListByStudent(ctx context.Context, studentID string) ([]model.UniversityCalculatedScore, error) {
	var scores []model.UniversityCalculatedScore
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("score_percentage DESC, university_name ASC").
		Find(&scores).Error
	return scores, err
}

// DeleteByStudent universityNames 가 비어 있으면 학생의 전체 결과를 지운다
func (r *universityScoreRepo) DeleteByStudent(ctx context.Context, studentID string, universityNames []string) (int64, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(universityNames) > 0 {
		query = query.Where("university_name IN ?", universityNames)
	}
	result := query.Delete(&model.UniversityCalculatedScore{})
	return result.RowsAffected, result.Error
}

// ── 모집단위별 위험도 결과 ──

// RecruitmentScoreRepository 모집단위별 결과 접근 인터페이스
type RecruitmentScoreRepository interface {
	UpsertBatch(ctx context.Context, results []model.RecruitmentScoreResult) error
	ListByStudent(ctx context.Context, studentID string) ([]model.RecruitmentScoreResult, error)
	DeleteByStudent(ctx context.Context, studentID string, universityNames []string) (int64, error)
}

type recruitmentScoreRepo struct {
	db *gorm.DB
}

// NewRecruitmentScoreRepo RecruitmentScoreRepository 생성
func NewRecruitmentScoreRepo(db *gorm.DB) RecruitmentScoreRepository {
	return &recruitmentScoreRepo{db: db}
}

var recruitmentScoreColumns = []string{
	"university_name", "year", "unit_name", "admission_name", "admission_type",
	"region", "recruitment_count",
	"converted_score", "average_grade", "risk_score",
	"grade_cut_50", "grade_cut_70", "grade_difference",
	"calculated_at", "updated_at",
}

// UpsertBatch (student_id, recruitment_unit_id) 충돌 시 결과를 덮어쓴다
func (r *recruitmentScoreRepo) UpsertBatch(ctx context.Context, results []model.RecruitmentScoreResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "recruitment_unit_id"}},
			DoUpdates: clause.AssignmentColumns(recruitmentScoreColumns),
		}).
		CreateInBatches(&results, 200).Error
}

func (r *recruitmentScoreRepo) ListByStudent(ctx context.Context, studentID string) ([]model.RecruitmentScoreResult, error) {
	var results []model.RecruitmentScoreResult
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("university_name ASC, risk_score DESC NULLS LAST, unit_name ASC").
		Find(&results).Error
	return results, err
}

func (r *recruitmentScoreRepo) DeleteByStudent(ctx context.Context, studentID string, universityNames []string) (int64, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(universityNames) > 0 {
		query = query.Where("university_name IN ?", universityNames)
	}
	result := query.Delete(&model.RecruitmentScoreResult{})
	return result.RowsAffected, result.Error
}
