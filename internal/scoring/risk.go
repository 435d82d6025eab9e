package scoring

import "math"

// 위험도 범위와 등급당 환산 폭
const (
	MinRiskScore = -15
	MaxRiskScore = 10
	RiskPerGrade = 5
)

// cutLine 50% 컷이 있으면 50% 컷, 없으면 70% 컷
func cutLine(gradeCut50, gradeCut70 *float64) (float64, bool) {
	if gradeCut50 != nil {
		return *gradeCut50, true
	}
	if gradeCut70 != nil {
		return *gradeCut70, true
	}
	return 0, false
}

// GradeDifference 평균 등급 - 기준 컷 (소수 둘째 자리). 컷이 모두 없으면 nil
func GradeDifference(averageGrade float64, gradeCut50, gradeCut70 *float64) *float64 {
	cut, ok := cutLine(gradeCut50, gradeCut70)
	if !ok {
		return nil
	}
	return ptr(Round2(averageGrade - cut))
}

// RiskScore 평균 등급과 전년도 컷으로 위험도를 계산한다
//
//	risk = clamp(round(-(avg - cut) × 5), -15, 10)
//
// 양수는 컷보다 좋은 성적(안정), 음수는 불리함을 뜻한다. 컷이 모두 없으면 nil
func RiskScore(averageGrade float64, gradeCut50, gradeCut70 *float64) *int {
	cut, ok := cutLine(gradeCut50, gradeCut70)
	if !ok {
		return nil
	}
	// 0.01 단위 정수로 차이를 구해 2.3-2.0 같은 부동소수 오차를 없앤다
	diffHundredths := math.Round((averageGrade - cut) * 100)
	r := math.Round(-diffHundredths * RiskPerGrade / 100)
	r = math.Max(MinRiskScore, math.Min(MaxRiskScore, r))
	risk := int(r)
	return &risk
}
