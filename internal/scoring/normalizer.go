package scoring

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"score-engine/internal/model"
)

// 등급 범위
const (
	MinGrade = 1
	MaxGrade = 9
)

// DefaultConversionTable 전국 공통 9등급 → 환산 점수 기본표
// 공식의 변환표에 해당 등급이 없을 때 사용한다
var DefaultConversionTable = map[int]float64{
	1: 100,
	2: 96,
	3: 89,
	4: 77,
	5: 60,
	6: 40,
	7: 23,
	8: 11,
	9: 4,
}

// DefaultAchievementGrades 성취도 → 등급 기본 매핑
var DefaultAchievementGrades = map[string]int{
	"A": 1,
	"B": 3,
	"C": 5,
}

// DefaultUnknownAchievementGrade 인식할 수 없는 성취도의 기본 등급
const DefaultUnknownAchievementGrade = 5

// ParseGrade 원시 등급 문자열을 1–9 정수 등급으로 변환한다
// "1".."9" 는 그대로, 정수가 아니면 A/B/C 기본 매핑을 적용한다. 그 외는 false
func ParseGrade(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= MinGrade && n <= MaxGrade {
			return n, true
		}
		return 0, false
	}
	// "2.0" 처럼 정수값 실수 표기
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		if float64(n) == f && n >= MinGrade && n <= MaxGrade {
			return n, true
		}
		return 0, false
	}
	if g, ok := DefaultAchievementGrades[strings.ToUpper(s)]; ok {
		return g, true
	}
	return 0, false
}

// ParseUnit 단위수를 해석한다
// 해석할 수 없으면 1, 숫자로 읽히지만 0 이하이면 0 (가중치 없음, 평균에서 빠진다)
func ParseUnit(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	if f <= 0 {
		return 0
	}
	return f
}

// Normalizer 성적 정규화기
type Normalizer struct {
	logger                  *zap.Logger
	unknownAchievementGrade int
}

// NewNormalizer unknownAchievementGrade 가 1–9 범위 밖이면 기본값 5를 쓴다
func NewNormalizer(logger *zap.Logger, unknownAchievementGrade int) *Normalizer {
	if unknownAchievementGrade < MinGrade || unknownAchievementGrade > MaxGrade {
		unknownAchievementGrade = DefaultUnknownAchievementGrade
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger, unknownAchievementGrade: unknownAchievementGrade}
}

// CareerAchievementToGrade 진로선택 과목 성취도를 등급으로 바꾼다
// 공식의 성취도 표 → 기본 A/B/C 매핑 → 설정된 기본 등급 순으로 적용한다
func (n *Normalizer) CareerAchievementToGrade(achievement string, f *model.Formula) int {
	letter := strings.ToUpper(strings.TrimSpace(achievement))
	if letter != "" {
		if g, ok := f.CareerGrade(letter); ok && g >= MinGrade && g <= MaxGrade {
			return g
		}
		if g, ok := DefaultAchievementGrades[letter]; ok {
			return g
		}
	}
	return n.unknownAchievementGrade
}

// GradeToScore 등급을 환산 점수로 바꾼다
// 공식 변환표에 없으면 기본표를 쓰고, 1–9 밖의 등급은 0
func (n *Normalizer) GradeToScore(grade int, f *model.Formula) float64 {
	if grade < MinGrade || grade > MaxGrade {
		n.logger.Warn("등급 범위를 벗어남", zap.Int("grade", grade))
		return 0
	}
	if score, ok := f.ConversionScore(grade); ok {
		return score
	}
	if f != nil && len(f.ConversionTable) > 0 {
		n.logger.Debug("변환표에 등급 없음, 기본표 사용",
			zap.String("university", f.UniversityName),
			zap.Int("grade", grade),
		)
	}
	return DefaultConversionTable[grade]
}

// ResolveGrade 과목 성적의 실제 반영 등급을 구한다
// 석차등급이 있으면 그대로 쓰고, 없고 성취도만 있으면 진로선택 과목으로 본다
func (n *Normalizer) ResolveGrade(g model.SubjectGrade, f *model.Formula) (int, bool) {
	if isNumericGrade(g.Grade) {
		return ParseGrade(g.Grade)
	}
	if g.Achievement != nil && strings.TrimSpace(*g.Achievement) != "" {
		return n.CareerAchievementToGrade(*g.Achievement, f), true
	}
	grade, ok := ParseGrade(g.Grade)
	if !ok {
		n.logger.Debug("해석할 수 없는 등급, 반영 제외",
			zap.String("subject", g.SubjectName),
			zap.String("semester", g.Semester),
			zap.String("grade", g.Grade),
		)
	}
	return grade, ok
}

func isNumericGrade(raw string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return err == nil
}
