//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"score-engine/internal/model"
	"score-engine/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=score_engine password=score_engine_password dbname=score_engine_test sslmode=disable TimeZone=Asia/Seoul"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "테스트 DB 연결 실패: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		fmt.Fprintf(os.Stderr, "pgcrypto 확장 생성 실패: %v\n", err)
		os.Exit(1)
	}
	err = testDB.AutoMigrate(
		&model.Formula{},
		&model.SubjectGrade{},
		&model.RecruitmentUnit{},
		&model.UniversityCalculatedScore{},
		&model.RecruitmentScoreResult{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 실패: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// ═══════════════════════════════════════════════════════════
// Test: Formula Upsert
// ═══════════════════════════════════════════════════════════

func TestFormulaRepo_UpsertReplacesExisting(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	name := uniqueName("테스트대")
	defer testDB.Where("university_name = ?", name).Delete(&model.Formula{})

	first := &model.Formula{
		UniversityName:  name,
		Year:            2025,
		KoreanRatio:     25,
		MaxScore:        1000,
		ConversionTable: datatypes.JSONMap{"1": 100, "2": 96},
		IsActive:        true,
	}
	if err := repo.Formula.Upsert(ctx, first); err != nil {
		t.Fatalf("첫 Upsert 실패: %v", err)
	}

	second := &model.Formula{UniversityName: name, Year: 2025, KoreanRatio: 40, MaxScore: 500, IsActive: true}
	if err := repo.Formula.Upsert(ctx, second); err != nil {
		t.Fatalf("두 번째 Upsert 실패: %v", err)
	}

	var count int64
	testDB.Model(&model.Formula{}).Where("university_name = ?", name).Count(&count)
	if count != 1 {
		t.Fatalf("(대학, 연도) 당 1행이어야 함, 실제 %d", count)
	}

	got, err := repo.Formula.GetByUniversityYear(ctx, name, 2025)
	if err != nil {
		t.Fatalf("조회 실패: %v", err)
	}
	if got.KoreanRatio != 40 || got.MaxScore != 500 {
		t.Errorf("갱신된 값이 반영되지 않음: %+v", got)
	}
}

func TestFormulaRepo_UpsertKeepsInactive(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	name := uniqueName("비활성대")
	other := uniqueName("전환대")
	defer testDB.Where("university_name IN ?", []string{name, other}).Delete(&model.Formula{})

	inactive := &model.Formula{UniversityName: name, Year: 2025, KoreanRatio: 30, MaxScore: 100, IsActive: false}
	if err := repo.Formula.Upsert(ctx, inactive); err != nil {
		t.Fatalf("Upsert 실패: %v", err)
	}
	if inactive.IsActive {
		t.Error("Upsert 후 구조체의 IsActive 가 true 로 바뀌면 안 됨")
	}
	got, err := repo.Formula.GetByUniversityYear(ctx, name, 2025)
	if err != nil {
		t.Fatalf("조회 실패: %v", err)
	}
	if got.IsActive {
		t.Error("비활성으로 저장한 공식이 활성으로 조회됨")
	}

	// 활성 → 비활성 전환
	if err := repo.Formula.Upsert(ctx, &model.Formula{UniversityName: other, Year: 2025, MaxScore: 100, IsActive: true}); err != nil {
		t.Fatalf("활성 Upsert 실패: %v", err)
	}
	if err := repo.Formula.Upsert(ctx, &model.Formula{UniversityName: other, Year: 2025, MaxScore: 100, IsActive: false}); err != nil {
		t.Fatalf("비활성 Upsert 실패: %v", err)
	}
	got, err = repo.Formula.GetByUniversityYear(ctx, other, 2025)
	if err != nil {
		t.Fatalf("조회 실패: %v", err)
	}
	if got.IsActive {
		t.Error("비활성 전환이 반영되지 않음")
	}

	active, err := repo.Formula.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive 실패: %v", err)
	}
	for _, f := range active {
		if f.UniversityName == name || f.UniversityName == other {
			t.Errorf("비활성 공식이 ListActive 에 포함됨: %s", f.UniversityName)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Score Upsert / Delete
// ═══════════════════════════════════════════════════════════

func TestUniversityScoreRepo_UpsertIsIdempotent(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	student := uniqueName("student")
	defer testDB.Where("student_id = ?", student).Delete(&model.UniversityCalculatedScore{})

	row := func(score float64) []model.UniversityCalculatedScore {
		return []model.UniversityCalculatedScore{{
			StudentID:      student,
			UniversityName: "한국대",
			Year:           2025,
			ConvertedScore: score,
			MaxScore:       1000,
			Success:        true,
			CalculatedAt:   time.Now(),
		}}
	}

	for _, score := range []float64{242.5, 300} {
		if err := repo.UniversityScore.UpsertBatch(ctx, row(score)); err != nil {
			t.Fatalf("UpsertBatch 실패: %v", err)
		}
	}

	scores, err := repo.UniversityScore.ListByStudent(ctx, student)
	if err != nil {
		t.Fatalf("ListByStudent 실패: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("중복 없이 1행이어야 함, 실제 %d", len(scores))
	}
	if scores[0].ConvertedScore != 300 {
		t.Errorf("마지막 값 300 기대, 실제 %v", scores[0].ConvertedScore)
	}

	n, err := repo.UniversityScore.DeleteByStudent(ctx, student, []string{"한국대"})
	if err != nil || n != 1 {
		t.Errorf("1행 삭제 기대, 실제 n=%d err=%v", n, err)
	}
}

func TestRecruitmentScoreRepo_UpsertAndDelete(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	student := uniqueName("student")
	university := uniqueName("모집대")

	unit := &model.RecruitmentUnit{
		UniversityName:     university,
		Year:               2025,
		UnitName:           "컴퓨터공학과",
		AdmissionType:      "학생부교과",
		AdmissionBasicType: "교과",
	}
	if err := testDB.Create(unit).Error; err != nil {
		t.Fatalf("모집단위 생성 실패: %v", err)
	}
	defer testDB.Where("recruitment_unit_id = ?", unit.RecruitmentUnitID).Delete(&model.RecruitmentUnit{})
	defer testDB.Where("student_id = ?", student).Delete(&model.RecruitmentScoreResult{})

	units, err := repo.RecruitmentUnit.ListByUniversities(ctx, []string{university}, 2025, "교과")
	if err != nil || len(units) != 1 {
		t.Fatalf("모집단위 1개 기대, 실제 %d err=%v", len(units), err)
	}
	if other, _ := repo.RecruitmentUnit.ListByUniversities(ctx, []string{university}, 2025, "종합"); len(other) != 0 {
		t.Errorf("다른 전형 유형은 제외되어야 함: %d", len(other))
	}

	risk := -2
	result := model.RecruitmentScoreResult{
		StudentID:         student,
		RecruitmentUnitID: unit.RecruitmentUnitID,
		UniversityName:    university,
		Year:              2025,
		UnitName:          unit.UnitName,
		RiskScore:         &risk,
		CalculatedAt:      time.Now(),
	}
	for i := 0; i < 2; i++ {
		if err := repo.RecruitmentScore.UpsertBatch(ctx, []model.RecruitmentScoreResult{result}); err != nil {
			t.Fatalf("UpsertBatch 실패: %v", err)
		}
	}

	results, err := repo.RecruitmentScore.ListByStudent(ctx, student)
	if err != nil || len(results) != 1 {
		t.Fatalf("중복 없이 1행 기대, 실제 %d err=%v", len(results), err)
	}

	if _, err := repo.RecruitmentScore.DeleteByStudent(ctx, student, nil); err != nil {
		t.Fatalf("DeleteByStudent 실패: %v", err)
	}
	results, _ = repo.RecruitmentScore.ListByStudent(ctx, student)
	if len(results) != 0 {
		t.Errorf("삭제 후 0행 기대, 실제 %d", len(results))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	student := uniqueName("student")

	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.UniversityScore.UpsertBatch(ctx, []model.UniversityCalculatedScore{{
			StudentID:      student,
			UniversityName: "롤백대",
			Year:           2025,
			MaxScore:       100,
			CalculatedAt:   time.Now(),
		}}); err != nil {
			return err
		}
		return fmt.Errorf("강제 롤백")
	})
	if err == nil {
		t.Fatal("강제 에러가 반환되어야 함")
	}

	scores, _ := repo.UniversityScore.ListByStudent(ctx, student)
	if len(scores) != 0 {
		testDB.Where("student_id = ?", student).Delete(&model.UniversityCalculatedScore{})
		t.Fatal("롤백 후 결과가 남아 있으면 안 됨")
	}
}
