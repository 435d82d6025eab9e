package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // cobra 관례
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "활성 환산 공식을 다시 읽어 개수를 확인한다",
	Args:  cobra.NoArgs,
	RunE:  runReload,
}

//nolint:gochecknoinits // cobra 관례
func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, _ []string) (err error) {
	var a *app
	a, err = openApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	var n int
	n, err = a.svc.Calculation.ReloadFormulaCache(commandContext(cmd))
	if err != nil {
		err = errors.Wrap(err, "공식 캐시 재적재 실패")
		return err
	}

	printf(cmd, "활성 공식 %d건 적재\n", n)
	return err
}
