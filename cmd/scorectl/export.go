package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // cobra 관례
var exportOutDir string

//nolint:gochecknoglobals // cobra 관례
var exportCmd = &cobra.Command{
	Use:   "export <student-id>",
	Short: "저장된 환산 결과를 엑셀 파일로 내보낸다",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

//nolint:gochecknoinits // cobra 관례
func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "출력 디렉터리")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	var a *app
	a, err = openApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		buf      *bytes.Buffer
		filename string
	)
	buf, filename, err = a.svc.Export.ExportScores(commandContext(cmd), args[0])
	if err != nil {
		err = errors.Wrap(err, "엑셀 내보내기 실패")
		return err
	}

	path := filepath.Join(exportOutDir, filename)
	err = os.WriteFile(path, buf.Bytes(), 0o644)
	if err != nil {
		err = errors.Wrapf(err, "파일 저장 실패: %s", path)
		return err
	}

	printf(cmd, "%s 저장 완료 (%d bytes)\n", path, buf.Len())
	return err
}
