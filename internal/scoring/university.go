package scoring

import (
	"fmt"

	"score-engine/internal/model"
)

// UniversityResult 한 대학 공식에 대한 전체 환산 결과
type UniversityResult struct {
	Categories        []SubjectScore     `json:"categories"`
	Years             []YearScore        `json:"years"`
	YearWeightedScore float64            `json:"year_weighted_score"`
	AttendanceScore   float64            `json:"attendance_score"`
	VolunteerScore    float64            `json:"volunteer_score"`
	ConvertedScore    float64            `json:"converted_score"`
	MaxScore          float64            `json:"max_score"`
	ScorePercentage   float64            `json:"score_percentage"`
	AverageGrade      *float64           `json:"average_grade,omitempty"`
	ReflectedSubjects []ReflectedSubject `json:"reflected_subjects"`
}

// Category 분류별 결과 조회
func (r *UniversityResult) Category(c Category) SubjectScore {
	for _, s := range r.Categories {
		if s.Category == c {
			return s
		}
	}
	return SubjectScore{Category: c}
}

// Year 학년별 결과 조회
func (r *UniversityResult) Year(year int) YearScore {
	for _, y := range r.Years {
		if y.Year == year {
			return y
		}
	}
	return YearScore{Year: year}
}

// ValidateFormula 계산 전에 공식의 수치 범위를 확인한다
func ValidateFormula(f *model.Formula) error {
	if f == nil {
		return fmt.Errorf("공식이 비어 있습니다")
	}
	if f.MaxScore <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidMaxScore, f.MaxScore)
	}
	for _, c := range Categories {
		if r := RatioFor(f, c); r < 0 || r > 100 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidRatio, c, r)
		}
	}
	for _, y := range AcademicYears {
		if r := f.YearRatio(y); r < 0 || r > 100 {
			return fmt.Errorf("%w: %d학년=%v", ErrInvalidRatio, y, r)
		}
	}
	if f.AttendanceScore < 0 || f.VolunteerScore < 0 {
		return fmt.Errorf("출결/봉사 점수는 음수일 수 없습니다")
	}
	return nil
}

// CalculateUniversity 여섯 교과 분류와 학년 가중 점수를 합산해 대학별 환산 점수를 만든다
//
//	converted = Σ분류 점수 + Σ학년 점수 + 출결 + 봉사
//	percentage = converted / max_score × 100
//
// 전체 평균 등급은 반영 비율이 있는 분류에 실제 반영된 과목의 단위수 가중 평균이며,
// 분류 반영이 전혀 없는 공식은 반영 비율이 있는 학년의 과목으로 대신 계산한다
func (c *Calculator) CalculateUniversity(grades []model.SubjectGrade, f *model.Formula) (*UniversityResult, error) {
	if err := ValidateFormula(f); err != nil {
		return nil, err
	}

	result := &UniversityResult{
		MaxScore:          f.MaxScore,
		AttendanceScore:   f.AttendanceScore,
		VolunteerScore:    f.VolunteerScore,
		ReflectedSubjects: []ReflectedSubject{},
	}

	byCategory := PartitionByCategory(grades)
	var total float64
	for _, cat := range Categories {
		s, err := c.CalculateSubjectScore(byCategory[cat], f, cat, RatioFor(f, cat))
		if err != nil {
			return nil, err
		}
		result.Categories = append(result.Categories, s)
		result.ReflectedSubjects = append(result.ReflectedSubjects, s.Subjects...)
		total += s.Score
	}

	years, err := c.CalculateYearScores(grades, f)
	if err != nil {
		return nil, err
	}
	result.Years = years
	for _, y := range years {
		result.YearWeightedScore += y.Score
	}
	result.YearWeightedScore = Round2(result.YearWeightedScore)
	total += result.YearWeightedScore

	total += f.AttendanceScore + f.VolunteerScore
	result.ConvertedScore = Round2(total)
	result.ScorePercentage = Round2(result.ConvertedScore / f.MaxScore * 100)
	result.AverageGrade = c.overallAverage(result, grades, f)

	return result, nil
}

func (c *Calculator) overallAverage(result *UniversityResult, grades []model.SubjectGrade, f *model.Formula) *float64 {
	var units, weighted float64
	for _, s := range result.ReflectedSubjects {
		units += s.Unit
		weighted += float64(s.Grade) * s.Unit
	}
	if units > 0 {
		return ptr(Round2(weighted / units))
	}

	byYear := PartitionByYear(grades)
	for _, year := range AcademicYears {
		if f.YearRatio(year) <= 0 {
			continue
		}
		for _, g := range byYear[year] {
			grade, ok := c.normalizer.ResolveGrade(g, f)
			if !ok {
				continue
			}
			unit := ParseUnit(g.Unit)
			if unit == 0 {
				continue
			}
			units += unit
			weighted += float64(grade) * unit
		}
	}
	if units > 0 {
		return ptr(Round2(weighted / units))
	}
	return nil
}
