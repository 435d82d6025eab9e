package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"score-engine/config"
	"score-engine/internal/model"
	"score-engine/internal/repository"
	pkgerrors "score-engine/pkg/errors"
	"score-engine/pkg/redis"
)

// ── Mock FormulaRepository ──

type mockFormulaRepo struct {
	mu        sync.Mutex
	formulas  map[formulaKey]model.Formula
	listErr   error
	listCalls int32
	// 설정되면 ListActive 가 이 채널이 닫힐 때까지 기다린다
	gate chan struct{}
	// n 번째 ListActive 호출은 스캔을 마친 뒤 holds[n] 이 닫힐 때까지 반환하지 않는다
	holds map[int32]chan struct{}
	// 설정되면 스캔을 마칠 때마다 호출 번호를 보낸다
	scanned chan int32
}

func newMockFormulaRepo(formulas ...model.Formula) *mockFormulaRepo {
	m := &mockFormulaRepo{formulas: make(map[formulaKey]model.Formula)}
	for _, f := range formulas {
		m.formulas[formulaKey{f.UniversityName, f.Year}] = f
	}
	return m
}

func (m *mockFormulaRepo) ListActive(_ context.Context) ([]model.Formula, error) {
	call := atomic.AddInt32(&m.listCalls, 1)
	if m.gate != nil {
		<-m.gate
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	var out []model.Formula
	for _, f := range m.formulas {
		if f.IsActive {
			out = append(out, f)
		}
	}
	hold := m.holds[call]
	m.mu.Unlock()

	if m.scanned != nil {
		m.scanned <- call
	}
	if hold != nil {
		<-hold
	}
	return out, nil
}

func (m *mockFormulaRepo) List(_ context.Context, year int) ([]model.Formula, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Formula
	for _, f := range m.formulas {
		if year == 0 || f.Year == year {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniversityName < out[j].UniversityName })
	return out, nil
}

func (m *mockFormulaRepo) GetByUniversityYear(_ context.Context, universityName string, year int) (*model.Formula, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.formulas[formulaKey{universityName, year}]; ok {
		return &f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFormulaRepo) Upsert(_ context.Context, formula *model.Formula) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := formulaKey{formula.UniversityName, formula.Year}
	if existing, ok := m.formulas[key]; ok {
		formula.FormulaID = existing.FormulaID
	} else if formula.FormulaID == "" {
		formula.FormulaID = "formula-" + formula.UniversityName
	}
	m.formulas[key] = *formula
	return nil
}

func (m *mockFormulaRepo) calls() int32 {
	return atomic.LoadInt32(&m.listCalls)
}

// ── Mock SubjectGradeRepository ──

type mockSubjectGradeRepo struct {
	grades map[string][]model.SubjectGrade
	err    error
}

func newMockSubjectGradeRepo() *mockSubjectGradeRepo {
	return &mockSubjectGradeRepo{grades: make(map[string][]model.SubjectGrade)}
}

func (m *mockSubjectGradeRepo) ListByStudent(_ context.Context, studentID string) ([]model.SubjectGrade, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.grades[studentID], nil
}

// ── Mock RecruitmentUnitRepository ──

type mockRecruitmentUnitRepo struct {
	units []model.RecruitmentUnit
}

func (m *mockRecruitmentUnitRepo) ListByUniversities(_ context.Context, universityNames []string, year int, admissionBasicType string) ([]model.RecruitmentUnit, error) {
	want := make(map[string]bool, len(universityNames))
	for _, n := range universityNames {
		want[n] = true
	}
	out := []model.RecruitmentUnit{}
	for _, u := range m.units {
		if want[u.UniversityName] && u.Year == year && u.AdmissionBasicType == admissionBasicType {
			out = append(out, u)
		}
	}
	return out, nil
}

// ── Mock UniversityScoreRepository ──

type mockUniversityScoreRepo struct {
	rows map[string]map[string]model.UniversityCalculatedScore // student → university → row
}

func newMockUniversityScoreRepo() *mockUniversityScoreRepo {
	return &mockUniversityScoreRepo{rows: make(map[string]map[string]model.UniversityCalculatedScore)}
}

func (m *mockUniversityScoreRepo) UpsertBatch(_ context.Context, scores []model.UniversityCalculatedScore) error {
	for i := range scores {
		sc := &scores[i]
		byUniv, ok := m.rows[sc.StudentID]
		if !ok {
			byUniv = make(map[string]model.UniversityCalculatedScore)
			m.rows[sc.StudentID] = byUniv
		}
		if existing, ok := byUniv[sc.UniversityName]; ok {
			sc.ScoreID = existing.ScoreID
		} else {
			sc.ScoreID = "score-" + sc.StudentID + "-" + sc.UniversityName
		}
		byUniv[sc.UniversityName] = *sc
	}
	return nil
}

func (m *mockUniversityScoreRepo) ListByStudent(_ context.Context, studentID string) ([]model.UniversityCalculatedScore, error) {
	out := []model.UniversityCalculatedScore{}
	for _, sc := range m.rows[studentID] {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniversityName < out[j].UniversityName })
	return out, nil
}

func (m *mockUniversityScoreRepo) DeleteByStudent(_ context.Context, studentID string, universityNames []string) (int64, error) {
	byUniv := m.rows[studentID]
	var n int64
	if len(universityNames) == 0 {
		n = int64(len(byUniv))
		delete(m.rows, studentID)
		return n, nil
	}
	for _, name := range universityNames {
		if _, ok := byUniv[name]; ok {
			delete(byUniv, name)
			n++
		}
	}
	return n, nil
}

// ── Mock RecruitmentScoreRepository ──

type mockRecruitmentScoreRepo struct {
	rows map[string]map[string]model.RecruitmentScoreResult // student → unit → row
}

func newMockRecruitmentScoreRepo() *mockRecruitmentScoreRepo {
	return &mockRecruitmentScoreRepo{rows: make(map[string]map[string]model.RecruitmentScoreResult)}
}

func (m *mockRecruitmentScoreRepo) UpsertBatch(_ context.Context, results []model.RecruitmentScoreResult) error {
	for i := range results {
		r := &results[i]
		byUnit, ok := m.rows[r.StudentID]
		if !ok {
			byUnit = make(map[string]model.RecruitmentScoreResult)
			m.rows[r.StudentID] = byUnit
		}
		if existing, ok := byUnit[r.RecruitmentUnitID]; ok {
			r.ResultID = existing.ResultID
		} else {
			r.ResultID = "result-" + r.StudentID + "-" + r.RecruitmentUnitID
		}
		byUnit[r.RecruitmentUnitID] = *r
	}
	return nil
}

func (m *mockRecruitmentScoreRepo) ListByStudent(_ context.Context, studentID string) ([]model.RecruitmentScoreResult, error) {
	out := []model.RecruitmentScoreResult{}
	for _, r := range m.rows[studentID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecruitmentUnitID < out[j].RecruitmentUnitID })
	return out, nil
}

func (m *mockRecruitmentScoreRepo) DeleteByStudent(_ context.Context, studentID string, universityNames []string) (int64, error) {
	want := make(map[string]bool, len(universityNames))
	for _, n := range universityNames {
		want[n] = true
	}
	var n int64
	for id, r := range m.rows[studentID] {
		if len(universityNames) == 0 || want[r.UniversityName] {
			delete(m.rows[studentID], id)
			n++
		}
	}
	return n, nil
}

// ── Mock CalculationLocker ──

type mockLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]bool)}
}

func (m *mockLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (*redis.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.held[key] {
		return nil, pkgerrors.ErrLockNotAcquired
	}
	m.held[key] = true
	return &redis.Lock{}, nil
}

func (m *mockLocker) ReleaseLock(_ context.Context, _ *redis.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
	return nil
}

// ── 테스트 조립 ──

type testRepos struct {
	formula          *mockFormulaRepo
	subjectGrade     *mockSubjectGradeRepo
	recruitmentUnit  *mockRecruitmentUnitRepo
	universityScore  *mockUniversityScoreRepo
	recruitmentScore *mockRecruitmentScoreRepo
}

func newTestRepos(formulas ...model.Formula) (*repository.Repository, *testRepos) {
	m := &testRepos{
		formula:          newMockFormulaRepo(formulas...),
		subjectGrade:     newMockSubjectGradeRepo(),
		recruitmentUnit:  &mockRecruitmentUnitRepo{},
		universityScore:  newMockUniversityScoreRepo(),
		recruitmentScore: newMockRecruitmentScoreRepo(),
	}
	repo := &repository.Repository{
		Formula:          m.formula,
		SubjectGrade:     m.subjectGrade,
		RecruitmentUnit:  m.recruitmentUnit,
		UniversityScore:  m.universityScore,
		RecruitmentScore: m.recruitmentScore,
	}
	return repo, m
}

func testCalculationConfig() *config.CalculationConfig {
	return &config.CalculationConfig{
		DefaultYear:             2025,
		AdmissionBasicType:      "교과",
		UnknownAchievementGrade: 5,
		LockTTL:                 time.Minute,
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
