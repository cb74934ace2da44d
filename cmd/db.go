package cmd

import (
	"errors"
	"time"

	"inkwell/app/logging"
	"inkwell/app/services"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var backupDir string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Back up, restore or remove the Badger database",
	Long:  `Maintenance of the store directory. The server must not be running.`,
}

// dbFromConfig builds the maintenance commands for the configured store.
func dbFromConfig(cmd *cobra.Command) (service.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return service.DB{}, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return service.DB{}, err
	}
	return service.DB{
		Storage: cfg.Storage,
		Confirm: confirmer(),
		Out:     cmd.OutOrStdout(),
		Logger:  logging.Component(logger, "db"),
	}, nil
}

// quiet drops ErrDeclined; DB has already said the operation was cancelled.
func quiet(err error) error {
	if errors.Is(err, services.ErrDeclined) {
		return nil
	}
	return err
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup file of the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := dbFromConfig(cmd)
		if err != nil {
			return err
		}
		_, err = db.Backup(backupDir, time.Now())
		return err
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := dbFromConfig(cmd)
		if err != nil {
			return err
		}
		return quiet(db.Restore(cmd.Context(), args[0]))
	},
}

var dbCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := dbFromConfig(cmd)
		if err != nil {
			return err
		}
		return quiet(db.Clean(cmd.Context()))
	},
}

func init() {
	dbBackupCmd.Flags().StringVar(&backupDir, "dir", "backups", "directory for the backup file")
	dbCmd.AddCommand(dbBackupCmd, dbRestoreCmd, dbCleanCmd)
	rootCmd.AddCommand(dbCmd)
}
