package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"score-engine/config"
	"score-engine/internal/dto"
	"score-engine/internal/model"
	"score-engine/internal/repository"
	"score-engine/internal/scoring"
	pkgerrors "score-engine/pkg/errors"
	"score-engine/pkg/redis"
	"score-engine/pkg/tracing"
)

// ── 환산 점수 계산 모듈 업무 오류 ──

var (
	ErrNoGradeData           = errors.New("성적 데이터가 없습니다")
	ErrNoFormulaData         = errors.New("환산 공식 데이터가 없습니다")
	ErrFormulaNotFound       = errors.New("환산 공식을 찾을 수 없습니다")
	ErrInvalidFormula        = errors.New("환산 공식이 올바르지 않습니다")
	ErrCalculationInProgress = errors.New("해당 학생의 계산이 이미 진행 중입니다")
)

// 계산이 끝난 결과는 요청이 취소되어도 저장한다
const persistTimeout = 30 * time.Second

// CalculationLocker 학생 단위 계산 직렬화 (*redis.Client 가 구현)
type CalculationLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*redis.Lock, error)
	ReleaseLock(ctx context.Context, lock *redis.Lock) error
}

// CalculationService 환산 점수 계산 업무 인터페이스
type CalculationService interface {
	// CalculateAndSaveScores 학생 성적을 대학별 공식으로 환산하고 모집단위별 위험도까지 저장한다
	CalculateAndSaveScores(ctx context.Context, studentID string, req *dto.CalculateScoresRequest) (*dto.CalculationResult, error)
	ReloadFormulaCache(ctx context.Context) (int, error)
	DeleteScores(ctx context.Context, studentID string, universityNames []string) (*dto.DeleteScoresResponse, error)
	GetSavedScores(ctx context.Context, studentID string) ([]dto.UniversityScoreResponse, error)
	GetSavedRecruitmentScores(ctx context.Context, studentID string) ([]dto.RecruitmentScoreResponse, error)
}

type calculationService struct {
	cfg        *config.CalculationConfig
	repo       *repository.Repository
	store      FormulaStore
	calculator *scoring.Calculator
	locker     CalculationLocker
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewCalculationService CalculationService 생성. locker 가 nil 이면 잠금 없이 동작한다
func NewCalculationService(
	cfg *config.CalculationConfig,
	repo *repository.Repository,
	store FormulaStore,
	locker CalculationLocker,
	logger *zap.Logger,
) CalculationService {
	normalizer := scoring.NewNormalizer(logger, cfg.UnknownAchievementGrade)
	return &calculationService{
		cfg:        cfg,
		repo:       repo,
		store:      store,
		calculator: scoring.NewCalculator(normalizer),
		locker:     locker,
		tracer:     otel.Tracer(tracing.TracerName),
		logger:     logger,
	}
}

// ═══════════════════════════════════════════════════════════
// CalculateAndSaveScores
// ═══════════════════════════════════════════════════════════
//
//  1. 학생 성적 조회 (없으면 즉시 실패 결과)
//  2. 공식 조회: 대학 지정 시 GetMany, 아니면 해당 연도 전체 (없으면 실패 결과)
//  3. 대학별 계산. 한 대학의 오류·패닉은 그 대학의 실패 행으로만 남는다
//  4. 성공한 대학의 모집단위에 위험도 계산
//  5. 한 트랜잭션으로 (재계산 시 삭제 →) 대학별 결과 → 모집단위별 결과 저장

func (s *calculationService) CalculateAndSaveScores(ctx context.Context, studentID string, req *dto.CalculateScoresRequest) (*dto.CalculationResult, error) {
	if req == nil {
		req = &dto.CalculateScoresRequest{}
	}
	year := req.Year
	if year == 0 {
		year = s.cfg.DefaultYear
	}
	names := normalizeNames(req.UniversityNames)

	ctx, span := s.tracer.Start(ctx, "CalculationService.CalculateAndSaveScores", trace.WithAttributes(
		attribute.String("student.id", studentID),
		attribute.Int("calculation.year", year),
		attribute.Int("calculation.requested_universities", len(names)),
		attribute.Bool("calculation.recalculate", req.Recalculate),
	))
	defer span.End()

	release, err := s.lockStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer release()

	calculatedAt := time.Now()
	result := &dto.CalculationResult{
		StudentID:         studentID,
		Year:              year,
		UniversityScores:  []dto.UniversityScoreResponse{},
		RecruitmentScores: []dto.RecruitmentScoreResponse{},
		CalculatedAt:      calculatedAt.Format(time.RFC3339),
	}

	// 1. 학생 성적
	grades, err := s.repo.SubjectGrade.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("학생 성적 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade lookup failed")
		return nil, fmt.Errorf("학생 성적 조회 실패: %w", err)
	}
	if len(grades) == 0 {
		result.Message = ErrNoGradeData.Error()
		return result, nil
	}

	// 2. 공식
	var formulas []*model.Formula
	if len(names) > 0 {
		formulas = s.store.GetMany(ctx, names, year)
	} else {
		formulas = s.store.GetAll(ctx, year)
	}
	if len(formulas) == 0 {
		result.Message = ErrNoFormulaData.Error()
		return result, nil
	}

	// 3. 대학별 계산
	scores := make([]model.UniversityCalculatedScore, 0, len(formulas))
	for _, f := range formulas {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		scores = append(scores, s.calculateUniversity(ctx, studentID, grades, f, calculatedAt))
	}
	if !result.Interrupted {
		for _, name := range missingNames(names, formulas) {
			reason := fmt.Sprintf("%s: %s (%d)", ErrFormulaNotFound.Error(), name, year)
			scores = append(scores, model.UniversityCalculatedScore{
				StudentID:      studentID,
				UniversityName: name,
				Year:           year,
				FailureReason:  &reason,
				CalculatedAt:   calculatedAt,
			})
		}
	}

	// 4. 모집단위별 위험도 (취소된 요청도 완료된 대학의 결과는 마무리한다)
	finishCtx := ctx
	if result.Interrupted {
		finishCtx = context.WithoutCancel(ctx)
	}
	recruitment, err := s.buildRecruitmentResults(finishCtx, studentID, year, scores, calculatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recruitment lookup failed")
		return nil, err
	}

	// 5. 저장
	if err := s.persist(ctx, studentID, req.Recalculate, scores, recruitment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	for i := range scores {
		if scores[i].Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
		result.UniversityScores = append(result.UniversityScores, toUniversityScoreResponse(&scores[i]))
	}
	for i := range recruitment {
		result.RecruitmentScores = append(result.RecruitmentScores, toRecruitmentScoreResponse(&recruitment[i]))
	}
	result.TotalUniversities = len(scores)
	result.Success = true
	result.Message = fmt.Sprintf("%d개 대학 계산 완료 (성공 %d, 실패 %d)",
		result.TotalUniversities, result.SuccessCount, result.FailureCount)
	if result.Interrupted {
		result.Message += ", 요청 취소로 일부 대학만 계산됨"
	}

	span.SetAttributes(
		attribute.Int("calculation.success_count", result.SuccessCount),
		attribute.Int("calculation.failure_count", result.FailureCount),
	)
	s.logger.Info("환산 점수 계산 완료",
		zap.String("student_id", studentID),
		zap.Int("year", year),
		zap.Int("total", result.TotalUniversities),
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount),
		zap.Int("recruitment_units", len(recruitment)),
		zap.Bool("interrupted", result.Interrupted),
	)
	return result, nil
}

// calculateUniversity 한 대학의 환산. 오류와 패닉 모두 실패 행으로 바꾼다
func (s *calculationService) calculateUniversity(
	ctx context.Context,
	studentID string,
	grades []model.SubjectGrade,
	f *model.Formula,
	calculatedAt time.Time,
) (row model.UniversityCalculatedScore) {
	_, span := s.tracer.Start(ctx, "CalculationService.calculateUniversity", trace.WithAttributes(
		attribute.String("university.name", f.UniversityName),
	))
	defer span.End()

	row = model.UniversityCalculatedScore{
		StudentID:      studentID,
		UniversityName: f.UniversityName,
		Year:           f.Year,
		MaxScore:       f.MaxScore,
		CalculatedAt:   calculatedAt,
	}
	fail := func(reason string) {
		row = model.UniversityCalculatedScore{
			StudentID:      studentID,
			UniversityName: f.UniversityName,
			Year:           f.Year,
			MaxScore:       f.MaxScore,
			FailureReason:  &reason,
			CalculatedAt:   calculatedAt,
		}
		span.SetStatus(codes.Error, reason)
		s.logger.Warn("대학별 환산 실패",
			zap.String("student_id", studentID),
			zap.String("university", f.UniversityName),
			zap.String("reason", reason),
		)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprintf("계산 중 예기치 않은 오류: %v", r))
		}
	}()

	res, err := s.calculator.CalculateUniversity(grades, f)
	if err != nil {
		fail(fmt.Errorf("%w: %v", ErrInvalidFormula, err).Error())
		return row
	}

	reflected, err := json.Marshal(res.ReflectedSubjects)
	if err != nil {
		fail(fmt.Sprintf("반영 과목 직렬화 실패: %v", err))
		return row
	}

	korean := res.Category(scoring.CategoryKorean)
	english := res.Category(scoring.CategoryEnglish)
	math := res.Category(scoring.CategoryMath)
	social := res.Category(scoring.CategorySocial)
	science := res.Category(scoring.CategoryScience)
	etc := res.Category(scoring.CategoryEtc)

	row.KoreanScore, row.KoreanAverageGrade = korean.Score, korean.AverageGrade
	row.EnglishScore, row.EnglishAverageGrade = english.Score, english.AverageGrade
	row.MathScore, row.MathAverageGrade = math.Score, math.AverageGrade
	row.SocialScore, row.SocialAverageGrade = social.Score, social.AverageGrade
	row.ScienceScore, row.ScienceAverageGrade = science.Score, science.AverageGrade
	row.EtcScore, row.EtcAverageGrade = etc.Score, etc.AverageGrade
	row.AverageGrade = res.AverageGrade

	row.FirstYearAverage = res.Year(1).AverageGrade
	row.SecondYearAverage = res.Year(2).AverageGrade
	row.ThirdYearAverage = res.Year(3).AverageGrade
	row.YearWeightedScore = res.YearWeightedScore

	row.AttendanceScore = res.AttendanceScore
	row.VolunteerScore = res.VolunteerScore
	row.ConvertedScore = res.ConvertedScore
	row.ScorePercentage = res.ScorePercentage
	row.ReflectedSubjects = datatypes.JSON(reflected)
	row.Success = true
	return row
}

// buildRecruitmentResults 성공한 대학의 모집단위(같은 연도, 같은 전형 기본 유형)마다 위험도를 매긴다
func (s *calculationService) buildRecruitmentResults(
	ctx context.Context,
	studentID string,
	year int,
	scores []model.UniversityCalculatedScore,
	calculatedAt time.Time,
) ([]model.RecruitmentScoreResult, error) {
	byUniversity := make(map[string]*model.UniversityCalculatedScore)
	var succeeded []string
	for i := range scores {
		if scores[i].Success {
			byUniversity[scores[i].UniversityName] = &scores[i]
			succeeded = append(succeeded, scores[i].UniversityName)
		}
	}
	if len(succeeded) == 0 {
		return []model.RecruitmentScoreResult{}, nil
	}

	units, err := s.repo.RecruitmentUnit.ListByUniversities(ctx, succeeded, year, s.cfg.AdmissionBasicType)
	if err != nil {
		s.logger.Error("모집단위 조회 실패", zap.Strings("universities", succeeded), zap.Error(err))
		return nil, fmt.Errorf("모집단위 조회 실패: %w", err)
	}

	results := make([]model.RecruitmentScoreResult, 0, len(units))
	for _, u := range units {
		score, ok := byUniversity[u.UniversityName]
		if !ok {
			continue
		}
		r := model.RecruitmentScoreResult{
			StudentID:         studentID,
			RecruitmentUnitID: u.RecruitmentUnitID,
			UniversityName:    u.UniversityName,
			Year:              u.Year,
			UnitName:          u.UnitName,
			AdmissionName:     u.AdmissionName,
			AdmissionType:     u.AdmissionType,
			Region:            u.Region,
			RecruitmentCount:  u.RecruitmentCount,
			ConvertedScore:    score.ConvertedScore,
			AverageGrade:      score.AverageGrade,
			GradeCut50:        u.GradeCut50,
			GradeCut70:        u.GradeCut70,
			CalculatedAt:      calculatedAt,
		}
		if score.AverageGrade != nil {
			r.RiskScore = scoring.RiskScore(*score.AverageGrade, u.GradeCut50, u.GradeCut70)
			r.GradeDifference = scoring.GradeDifference(*score.AverageGrade, u.GradeCut50, u.GradeCut70)
		}
		results = append(results, r)
	}
	return results, nil
}

// persist 재계산이면 이번에 계산한 대학의 이전 결과를 지운 뒤 새 결과를 쓴다
func (s *calculationService) persist(
	ctx context.Context,
	studentID string,
	recalculate bool,
	scores []model.UniversityCalculatedScore,
	recruitment []model.RecruitmentScoreResult,
) error {
	if len(scores) == 0 {
		return nil
	}
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	universities := make([]string, 0, len(scores))
	var failed []string
	for _, sc := range scores {
		universities = append(universities, sc.UniversityName)
		if !sc.Success {
			failed = append(failed, sc.UniversityName)
		}
	}

	err := s.repo.Transaction(persistCtx, func(txRepo *repository.Repository) error {
		if recalculate {
			if _, err := txRepo.RecruitmentScore.DeleteByStudent(persistCtx, studentID, universities); err != nil {
				return fmt.Errorf("이전 모집단위 결과 삭제 실패: %w", err)
			}
			if _, err := txRepo.UniversityScore.DeleteByStudent(persistCtx, studentID, universities); err != nil {
				return fmt.Errorf("이전 대학별 결과 삭제 실패: %w", err)
			}
		} else if len(failed) > 0 {
			// 이번에 실패한 대학의 모집단위 결과는 이전 성공분이라도 남기지 않는다
			if _, err := txRepo.RecruitmentScore.DeleteByStudent(persistCtx, studentID, failed); err != nil {
				return fmt.Errorf("실패 대학 모집단위 결과 삭제 실패: %w", err)
			}
		}
		if err := txRepo.UniversityScore.UpsertBatch(persistCtx, scores); err != nil {
			return fmt.Errorf("대학별 결과 저장 실패: %w", err)
		}
		if err := txRepo.RecruitmentScore.UpsertBatch(persistCtx, recruitment); err != nil {
			return fmt.Errorf("모집단위 결과 저장 실패: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("환산 결과 저장 실패", zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	return nil
}

// lockStudent Redis 잠금. 다른 요청이 잡고 있으면 ErrCalculationInProgress,
// Redis 오류면 경고만 남기고 잠금 없이 진행한다 (결과 행 중복은 DB 유일 제약이 막는다)
func (s *calculationService) lockStudent(ctx context.Context, studentID string) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	lock, err := s.locker.AcquireLock(ctx, studentID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			return nil, ErrCalculationInProgress
		}
		s.logger.Warn("계산 잠금 획득 실패, 잠금 없이 진행", zap.String("student_id", studentID), zap.Error(err))
		return noop, nil
	}

	return func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lock); err != nil {
			s.logger.Warn("계산 잠금 해제 실패", zap.String("student_id", studentID), zap.Error(err))
		}
	}, nil
}

// ────────────────────── ReloadFormulaCache ──────────────────────

func (s *calculationService) ReloadFormulaCache(ctx context.Context) (int, error) {
	n, err := s.store.Reload(ctx)
	if err != nil {
		s.logger.Error("환산 공식 캐시 재적재 실패", zap.Error(err))
		return n, err
	}
	return n, nil
}

// ────────────────────── DeleteScores ──────────────────────

func (s *calculationService) DeleteScores(ctx context.Context, studentID string, universityNames []string) (*dto.DeleteScoresResponse, error) {
	names := normalizeNames(universityNames)
	resp := &dto.DeleteScoresResponse{}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		n, err := txRepo.RecruitmentScore.DeleteByStudent(ctx, studentID, names)
		if err != nil {
			return err
		}
		resp.RecruitmentScores = n

		n, err = txRepo.UniversityScore.DeleteByStudent(ctx, studentID, names)
		if err != nil {
			return err
		}
		resp.UniversityScores = n
		return nil
	})
	if err != nil {
		s.logger.Error("환산 결과 삭제 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ────────────────────── 조회 ──────────────────────

func (s *calculationService) GetSavedScores(ctx context.Context, studentID string) ([]dto.UniversityScoreResponse, error) {
	scores, err := s.repo.UniversityScore.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("대학별 결과 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.UniversityScoreResponse, 0, len(scores))
	for i := range scores {
		out = append(out, toUniversityScoreResponse(&scores[i]))
	}
	return out, nil
}

func (s *calculationService) GetSavedRecruitmentScores(ctx context.Context, studentID string) ([]dto.RecruitmentScoreResponse, error) {
	results, err := s.repo.RecruitmentScore.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("모집단위 결과 조회 실패", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.RecruitmentScoreResponse, 0, len(results))
	for i := range results {
		out = append(out, toRecruitmentScoreResponse(&results[i]))
	}
	return out, nil
}

// ── 내부 도우미 ──

// normalizeNames 공백 제거, 빈 값·중복 제외 (순서 유지)
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func missingNames(requested []string, found []*model.Formula) []string {
	have := make(map[string]bool, len(found))
	for _, f := range found {
		have[f.UniversityName] = true
	}
	var missing []string
	for _, n := range requested {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

func toUniversityScoreResponse(sc *model.UniversityCalculatedScore) dto.UniversityScoreResponse {
	resp := dto.UniversityScoreResponse{
		ID:             sc.ScoreID,
		StudentID:      sc.StudentID,
		UniversityName: sc.UniversityName,
		Year:           sc.Year,
		Categories: []dto.CategoryScoreResponse{
			{Category: string(scoring.CategoryKorean), Score: sc.KoreanScore, AverageGrade: sc.KoreanAverageGrade},
			{Category: string(scoring.CategoryEnglish), Score: sc.EnglishScore, AverageGrade: sc.EnglishAverageGrade},
			{Category: string(scoring.CategoryMath), Score: sc.MathScore, AverageGrade: sc.MathAverageGrade},
			{Category: string(scoring.CategorySocial), Score: sc.SocialScore, AverageGrade: sc.SocialAverageGrade},
			{Category: string(scoring.CategoryScience), Score: sc.ScienceScore, AverageGrade: sc.ScienceAverageGrade},
			{Category: string(scoring.CategoryEtc), Score: sc.EtcScore, AverageGrade: sc.EtcAverageGrade},
		},
		AverageGrade:      sc.AverageGrade,
		FirstYearAverage:  sc.FirstYearAverage,
		SecondYearAverage: sc.SecondYearAverage,
		ThirdYearAverage:  sc.ThirdYearAverage,
		YearWeightedScore: sc.YearWeightedScore,
		AttendanceScore:   sc.AttendanceScore,
		VolunteerScore:    sc.VolunteerScore,
		ConvertedScore:    sc.ConvertedScore,
		MaxScore:          sc.MaxScore,
		ScorePercentage:   sc.ScorePercentage,
		Success:           sc.Success,
		FailureReason:     sc.FailureReason,
		CalculatedAt:      sc.CalculatedAt.Format(time.RFC3339),
	}
	if len(sc.ReflectedSubjects) > 0 {
		resp.ReflectedSubjects = json.RawMessage(sc.ReflectedSubjects)
	}
	return resp
}

func toRecruitmentScoreResponse(r *model.RecruitmentScoreResult) dto.RecruitmentScoreResponse {
	return dto.RecruitmentScoreResponse{
		ID:                r.ResultID,
		RecruitmentUnitID: r.RecruitmentUnitID,
		UniversityName:    r.UniversityName,
		Year:              r.Year,
		UnitName:          r.UnitName,
		AdmissionName:     r.AdmissionName,
		AdmissionType:     r.AdmissionType,
		Region:            r.Region,
		RecruitmentCount:  r.RecruitmentCount,
		ConvertedScore:    r.ConvertedScore,
		AverageGrade:      r.AverageGrade,
		RiskScore:         r.RiskScore,
		GradeCut50:        r.GradeCut50,
		GradeCut70:        r.GradeCut70,
		GradeDifference:   r.GradeDifference,
		CalculatedAt:      r.CalculatedAt.Format(time.RFC3339),
	}
}
