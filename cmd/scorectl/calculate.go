package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"score-engine/internal/dto"
)

//nolint:gochecknoglobals // cobra 관례
var (
	calcUniversities []string
	calcYear         int
	calcRecalculate  bool
	calcJSON         bool
)

//nolint:gochecknoglobals // cobra 관례
var calculateCmd = &cobra.Command{
	Use:   "calculate <student-id>",
	Short: "학생 한 명의 환산 점수를 계산하고 저장한다",
	Long: `학생의 과목 성적을 대학별 공식으로 환산하고 모집단위별 위험도까지 저장한다.

예시:
  # 기본 연도의 모든 대학
  scorectl calculate 7f3c...

  # 특정 대학만 다시 계산
  scorectl calculate 7f3c... -u 가나대학교 -u 다라대학교 --recalculate`,
	Args: cobra.ExactArgs(1),
	RunE: runCalculate,
}

//nolint:gochecknoinits // cobra 관례
func init() {
	rootCmd.AddCommand(calculateCmd)
	calculateCmd.Flags().StringArrayVarP(&calcUniversities, "university", "u", nil, "대상 대학 (반복 가능, 생략 시 전체)")
	calculateCmd.Flags().IntVar(&calcYear, "year", 0, "공식 연도 (0 이면 설정의 기본 연도)")
	calculateCmd.Flags().BoolVar(&calcRecalculate, "recalculate", false, "대상 대학의 기존 결과를 지우고 다시 계산")
	calculateCmd.Flags().BoolVar(&calcJSON, "json", false, "결과 전체를 JSON 으로 출력")
}

func runCalculate(cmd *cobra.Command, args []string) (err error) {
	var a *app
	a, err = openApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	var result *dto.CalculationResult
	result, err = a.svc.Calculation.CalculateAndSaveScores(commandContext(cmd), args[0], &dto.CalculateScoresRequest{
		UniversityNames: calcUniversities,
		Recalculate:     calcRecalculate,
		Year:            calcYear,
	})
	if err != nil {
		err = errors.Wrap(err, "환산 점수 계산 실패")
		return err
	}

	if calcJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		err = enc.Encode(result)
		return err
	}

	printf(cmd, "%s\n", result.Message)
	printf(cmd, "학생 %s / %d년: 대상 %d, 성공 %d, 실패 %d\n",
		result.StudentID, result.Year, result.TotalUniversities, result.SuccessCount, result.FailureCount)
	if result.Interrupted {
		printf(cmd, "중단됨: 완료된 결과만 저장했습니다\n")
	}
	for _, u := range result.UniversityScores {
		if !u.Success {
			reason := ""
			if u.FailureReason != nil {
				reason = *u.FailureReason
			}
			printf(cmd, "  ✗ %s: %s\n", u.UniversityName, reason)
			continue
		}
		printf(cmd, "  ✓ %s: %.2f / %.2f (%.2f%%)\n", u.UniversityName, u.ConvertedScore, u.MaxScore, u.ScorePercentage)
	}
	if !result.Success {
		err = errors.New(result.Message)
	}
	return err
}
