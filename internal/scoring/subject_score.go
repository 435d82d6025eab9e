package scoring

import (
	"errors"
	"fmt"

	"score-engine/internal/model"
)

// ── 계산 엔진 오류 ──

var (
	ErrInvalidMaxScore = errors.New("max_score 는 0보다 커야 합니다")
	ErrInvalidRatio    = errors.New("반영 비율은 0-100 사이여야 합니다")
)

// ReflectedSubject 실제 반영된 과목 (감사/표시용)
type ReflectedSubject struct {
	SubjectName    string   `json:"subject_name"`
	Category       Category `json:"category"`
	Semester       string   `json:"semester"`
	Grade          int      `json:"grade"`
	ConvertedScore float64  `json:"converted_score"`
	Unit           float64  `json:"unit"`
}

// SubjectScore 한 교과 분류의 환산 결과
type SubjectScore struct {
	Category          Category           `json:"category"`
	Ratio             float64            `json:"ratio"`
	Score             float64            `json:"score"`
	AvgConvertedScore float64            `json:"avg_converted_score"`
	AverageGrade      *float64           `json:"average_grade,omitempty"`
	TotalUnits        float64            `json:"total_units"`
	Subjects          []ReflectedSubject `json:"subjects"`
}

// Calculator 순수 계산기. 저장소에 접근하지 않는다
type Calculator struct {
	normalizer *Normalizer
}

// NewCalculator 계산기 생성
func NewCalculator(normalizer *Normalizer) *Calculator {
	return &Calculator{normalizer: normalizer}
}

// Normalizer 내부 정규화기
func (c *Calculator) Normalizer() *Normalizer { return c.normalizer }

// CalculateSubjectScore 한 분류의 단위수 가중 환산 점수를 계산한다
//
//	avgConverted = Σ(score×unit) / Σunit
//	score        = round2(avgConverted × (max_score×ratio/100) / 100)
//	averageGrade = round2(Σ(grade×unit) / Σunit)
func (c *Calculator) CalculateSubjectScore(grades []model.SubjectGrade, f *model.Formula, category Category, ratio float64) (SubjectScore, error) {
	result := SubjectScore{Category: category, Ratio: ratio, Subjects: []ReflectedSubject{}}

	if f.MaxScore <= 0 {
		return result, fmt.Errorf("%w: %v", ErrInvalidMaxScore, f.MaxScore)
	}
	if ratio < 0 || ratio > 100 {
		return result, fmt.Errorf("%w: %s=%v", ErrInvalidRatio, category, ratio)
	}
	if len(grades) == 0 || ratio == 0 {
		return result, nil
	}

	var totalUnits, weightedScore, weightedGrade float64
	for _, g := range grades {
		grade, ok := c.normalizer.ResolveGrade(g, f)
		if !ok {
			continue
		}
		unit := ParseUnit(g.Unit)
		if unit == 0 {
			continue
		}
		converted := c.normalizer.GradeToScore(grade, f)

		totalUnits += unit
		weightedScore += converted * unit
		weightedGrade += float64(grade) * unit

		result.Subjects = append(result.Subjects, ReflectedSubject{
			SubjectName:    g.SubjectName,
			Category:       category,
			Semester:       g.Semester,
			Grade:          grade,
			ConvertedScore: converted,
			Unit:           unit,
		})
	}

	if totalUnits == 0 {
		return result, nil
	}

	maxSubjectScore := f.MaxScore * ratio / 100
	result.TotalUnits = totalUnits
	result.AvgConvertedScore = Round2(weightedScore / totalUnits)
	result.Score = Round2(weightedScore / totalUnits * maxSubjectScore / 100)
	result.AverageGrade = ptr(Round2(weightedGrade / totalUnits))
	return result, nil
}
