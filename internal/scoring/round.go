package scoring

import "math"

// Round2 소수 둘째 자리 반올림 (0.5 는 0에서 먼 쪽으로)
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func ptr(v float64) *float64 { return &v }
