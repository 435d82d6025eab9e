package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"score-engine/internal/dto"
	"score-engine/internal/model"
	"score-engine/internal/repository"
	"score-engine/internal/scoring"
)

// FormulaService 환산 공식 관리 업무 인터페이스
// 쓰기는 모두 FormulaStore 를 거쳐 캐시와 저장소를 함께 갱신한다
type FormulaService interface {
	Upsert(ctx context.Context, req *dto.UpsertFormulaRequest) (*dto.FormulaResponse, error)
	Get(ctx context.Context, universityName string, year int) (*dto.FormulaResponse, error)
	List(ctx context.Context, req *dto.FormulaListRequest) ([]dto.FormulaResponse, error)
	CacheStats(ctx context.Context) *dto.FormulaCacheResponse
}

type formulaService struct {
	repo   *repository.Repository
	store  FormulaStore
	logger *zap.Logger
}

// NewFormulaService FormulaService 생성
func NewFormulaService(repo *repository.Repository, store FormulaStore, logger *zap.Logger) FormulaService {
	return &formulaService{repo: repo, store: store, logger: logger}
}

// ────────────────────── Upsert ──────────────────────

func (s *formulaService) Upsert(ctx context.Context, req *dto.UpsertFormulaRequest) (*dto.FormulaResponse, error) {
	formula, err := buildFormula(req)
	if err != nil {
		return nil, err
	}
	if err := scoring.ValidateFormula(formula); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}

	stored, err := s.store.Upsert(ctx, formula)
	if err != nil {
		return nil, err
	}

	s.logger.Info("환산 공식 저장",
		zap.String("university", stored.UniversityName),
		zap.Int("year", stored.Year),
		zap.Bool("active", stored.IsActive),
	)
	return toFormulaResponse(stored), nil
}

// buildFormula 변환표 키를 검증하며 요청을 모델로 바꾼다
func buildFormula(req *dto.UpsertFormulaRequest) (*model.Formula, error) {
	name := strings.TrimSpace(req.UniversityName)
	if name == "" {
		return nil, fmt.Errorf("%w: 대학 이름이 비어 있습니다", ErrInvalidFormula)
	}

	var conversion datatypes.JSONMap
	if len(req.ConversionTable) > 0 {
		conversion = make(datatypes.JSONMap, len(req.ConversionTable))
		for k, v := range req.ConversionTable {
			g, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil || g < scoring.MinGrade || g > scoring.MaxGrade {
				return nil, fmt.Errorf("%w: 변환표 등급 키 %q", ErrInvalidFormula, k)
			}
			conversion[strconv.Itoa(g)] = v
		}
	}

	var career datatypes.JSONMap
	if len(req.CareerConversionTable) > 0 {
		career = make(datatypes.JSONMap, len(req.CareerConversionTable))
		for k, g := range req.CareerConversionTable {
			letter := strings.ToUpper(strings.TrimSpace(k))
			if letter == "" {
				return nil, fmt.Errorf("%w: 성취도 키가 비어 있습니다", ErrInvalidFormula)
			}
			if g < scoring.MinGrade || g > scoring.MaxGrade {
				return nil, fmt.Errorf("%w: 성취도 %s 의 등급 %d", ErrInvalidFormula, letter, g)
			}
			career[letter] = g
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &model.Formula{
		UniversityName:        name,
		Year:                  req.Year,
		FirstYearRatio:        req.FirstYearRatio,
		SecondYearRatio:       req.SecondYearRatio,
		ThirdYearRatio:        req.ThirdYearRatio,
		KoreanRatio:           req.KoreanRatio,
		EnglishRatio:          req.EnglishRatio,
		MathRatio:             req.MathRatio,
		SocialRatio:           req.SocialRatio,
		ScienceRatio:          req.ScienceRatio,
		EtcRatio:              req.EtcRatio,
		ConversionTable:       conversion,
		CareerConversionTable: career,
		AttendanceScore:       req.AttendanceScore,
		VolunteerScore:        req.VolunteerScore,
		MaxScore:              req.MaxScore,
		IsActive:              active,
	}, nil
}

// ────────────────────── Get / List ──────────────────────

// Get 비활성 공식도 조회되도록 저장소에서 읽는다
func (s *formulaService) Get(ctx context.Context, universityName string, year int) (*dto.FormulaResponse, error) {
	formula, err := s.repo.Formula.GetByUniversityYear(ctx, universityName, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormulaNotFound
		}
		s.logger.Error("환산 공식 조회 실패",
			zap.String("university", universityName),
			zap.Int("year", year),
			zap.Error(err),
		)
		return nil, err
	}
	return toFormulaResponse(formula), nil
}

func (s *formulaService) List(ctx context.Context, req *dto.FormulaListRequest) ([]dto.FormulaResponse, error) {
	year := 0
	if req != nil {
		year = req.Year
	}
	formulas, err := s.repo.Formula.List(ctx, year)
	if err != nil {
		s.logger.Error("환산 공식 목록 조회 실패", zap.Int("year", year), zap.Error(err))
		return nil, err
	}
	out := make([]dto.FormulaResponse, 0, len(formulas))
	for i := range formulas {
		out = append(out, *toFormulaResponse(&formulas[i]))
	}
	return out, nil
}

func (s *formulaService) CacheStats(_ context.Context) *dto.FormulaCacheResponse {
	stats := s.store.Stats()
	resp := &dto.FormulaCacheResponse{Loaded: stats.Loaded, Entries: stats.Entries}
	if !stats.LoadedAt.IsZero() {
		resp.LoadedAt = stats.LoadedAt.Format(time.RFC3339)
	}
	return resp
}

func toFormulaResponse(f *model.Formula) *dto.FormulaResponse {
	resp := &dto.FormulaResponse{
		ID:                    f.FormulaID,
		UniversityName:        f.UniversityName,
		Year:                  f.Year,
		FirstYearRatio:        f.FirstYearRatio,
		SecondYearRatio:       f.SecondYearRatio,
		ThirdYearRatio:        f.ThirdYearRatio,
		KoreanRatio:           f.KoreanRatio,
		EnglishRatio:          f.EnglishRatio,
		MathRatio:             f.MathRatio,
		SocialRatio:           f.SocialRatio,
		ScienceRatio:          f.ScienceRatio,
		EtcRatio:              f.EtcRatio,
		ConversionTable:       f.ConversionTable,
		CareerConversionTable: f.CareerConversionTable,
		AttendanceScore:       f.AttendanceScore,
		VolunteerScore:        f.VolunteerScore,
		MaxScore:              f.MaxScore,
		IsActive:              f.IsActive,
	}
	if !f.UpdatedAt.IsZero() {
		resp.UpdatedAt = f.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
