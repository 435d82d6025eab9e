package scoring

import (
	"math"
	"strings"
	"unicode"

	"score-engine/internal/model"
)

// AcademicYears 반영 학년
var AcademicYears = []int{1, 2, 3}

// YearScore 학년별 평균 등급과 학년 반영 점수
type YearScore struct {
	Year         int      `json:"year"`
	Ratio        float64  `json:"ratio"`
	AverageGrade *float64 `json:"average_grade,omitempty"`
	Score        float64  `json:"score"`
	TotalUnits   float64  `json:"total_units"`
}

// AcademicYear 학기 문자열("1-1", "2학년 1학기", "31")의 첫 숫자로 학년을 구한다
func AcademicYear(semester string) (int, bool) {
	for _, r := range strings.TrimSpace(semester) {
		if unicode.IsDigit(r) {
			y := int(r - '0')
			if y >= 1 && y <= 3 {
				return y, true
			}
			return 0, false
		}
	}
	return 0, false
}

// PartitionByYear 과목 성적을 학년별로 나눈다. 학년을 알 수 없는 성적은 제외
func PartitionByYear(grades []model.SubjectGrade) map[int][]model.SubjectGrade {
	out := make(map[int][]model.SubjectGrade, len(AcademicYears))
	for _, g := range grades {
		if y, ok := AcademicYear(g.Semester); ok {
			out[y] = append(out[y], g)
		}
	}
	return out
}

// CalculateYearScores 학년별 단위수 가중 평균 등급을 구하고,
// 학년 반영 비율이 0이 아닌 학년만 gradeToScore(round(평균)) 기반 점수를 매긴다
func (c *Calculator) CalculateYearScores(grades []model.SubjectGrade, f *model.Formula) ([]YearScore, error) {
	if f.MaxScore <= 0 {
		return nil, ErrInvalidMaxScore
	}

	byYear := PartitionByYear(grades)
	out := make([]YearScore, 0, len(AcademicYears))

	for _, year := range AcademicYears {
		ratio := f.YearRatio(year)
		if ratio < 0 || ratio > 100 {
			return nil, ErrInvalidRatio
		}
		ys := YearScore{Year: year, Ratio: ratio}

		var totalUnits, weightedGrade float64
		for _, g := range byYear[year] {
			grade, ok := c.normalizer.ResolveGrade(g, f)
			if !ok {
				continue
			}
			unit := ParseUnit(g.Unit)
			if unit == 0 {
				continue
			}
			totalUnits += unit
			weightedGrade += float64(grade) * unit
		}

		if totalUnits > 0 {
			avg := Round2(weightedGrade / totalUnits)
			ys.AverageGrade = &avg
			ys.TotalUnits = totalUnits
			if ratio > 0 {
				converted := c.normalizer.GradeToScore(int(math.Round(avg)), f)
				ys.Score = Round2(converted * (f.MaxScore * ratio / 100) / 100)
			}
		}
		out = append(out, ys)
	}
	return out, nil
}
