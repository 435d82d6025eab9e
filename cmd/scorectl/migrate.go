package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"score-engine/pkg/database"
)

//nolint:gochecknoglobals // cobra 관례
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "적용되지 않은 데이터베이스 마이그레이션을 적용한다",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

//nolint:gochecknoinits // cobra 관례
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) (err error) {
	var a *app
	a, err = openApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	sqlDB, err := a.db.DB()
	if err != nil {
		err = errors.Wrap(err, "sql.DB 획득 실패")
		return err
	}

	err = database.RunMigrations(sqlDB, a.logger)
	if err != nil {
		err = errors.Wrap(err, "마이그레이션 실패")
		return err
	}
	return err
}
