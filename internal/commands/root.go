package commands

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/taskroom/taskroom/internal/config"
	"github.com/taskroom/taskroom/internal/infra/db"
)

var rootCmd = &cobra.Command{
	Use:   "taskroomctl",
	Short: "Administrative commands for a taskroom deployment",
	Long: `taskroomctl manages the taskroom database outside the API server.
It reads the same configuration as the server (configs/config.yaml, APP_* environment).`,
	SilenceUsage: true,
}

// openDB returns the configured database and a func releasing it. Replaced in tests.
var openDB = func() (*gorm.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	d, err := db.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return d, func() {
		if sqlDB, err := d.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

// withDB opens the database before running fn.
func withDB(fn func(cmd *cobra.Command, args []string, d *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, release, err := openDB()
		if err != nil {
			return err
		}
		defer release()
		return fn(cmd, args, d)
	}
}

func SetVersion(v, c string) {
	rootCmd.Version = v + " (" + c + ")"
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(newCreateUserCmd())
}
