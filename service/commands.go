package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"inkwell/app/config"
	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/rs/zerolog"
)

// ErrBackupUnsupported is returned by the database commands for drivers
// other than badger. Use export and import for those.
var ErrBackupUnsupported = errors.New("database backup and restore need the badger driver; use export and import instead")

// DB runs database maintenance against the configured store. The store
// must not be open elsewhere.
type DB struct {
	Storage config.StorageConfig
	Confirm services.Confirmer
	Out     io.Writer
	Logger  zerolog.Logger
}

func (d DB) confirm(ctx context.Context, prompt string) bool {
	if d.Confirm == nil {
		return false
	}
	ok, err := d.Confirm.Confirm(ctx, prompt)
	if err != nil {
		d.Logger.Warn().Err(err).Msg("Confirmation failed")
		return false
	}
	return ok
}

func (d DB) exists() bool {
	if d.Storage.Driver == config.DriverMemory {
		return false
	}
	_, err := os.Stat(d.Storage.Path)
	return err == nil
}

// Clean removes the database after confirmation.
func (d DB) Clean(ctx context.Context) error {
	if !d.exists() {
		fmt.Fprintln(d.Out, "Database is already clean (does not exist)")
		return nil
	}
	if !d.confirm(ctx, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(d.Out, "Operation cancelled")
		return services.ErrDeclined
	}
	if err := os.RemoveAll(d.Storage.Path); err != nil {
		return fmt.Errorf("cleaning database: %w", err)
	}
	fmt.Fprintln(d.Out, "Database cleaned successfully")
	return nil
}

// Backup writes a full backup into dir and returns its path.
func (d DB) Backup(dir string, now time.Time) (string, error) {
	if d.Storage.Driver != config.DriverBadger {
		return "", ErrBackupUnsupported
	}
	if !d.exists() {
		return "", fmt.Errorf("no database exists to backup at %s", d.Storage.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	store, err := repositories.NewBadgerStore(d.Storage.Path, d.Logger)
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", now.Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", err
	}
	fmt.Fprintf(d.Out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// Restore replaces the database with a backup. An existing database is
// only replaced after confirmation.
func (d DB) Restore(ctx context.Context, backupFile string) error {
	if d.Storage.Driver != config.DriverBadger {
		return ErrBackupUnsupported
	}
	fi, err := os.Stat(backupFile)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if d.exists() {
		if !d.confirm(ctx, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(d.Out, "Operation cancelled")
			return services.ErrDeclined
		}
		if err := os.RemoveAll(d.Storage.Path); err != nil {
			return fmt.Errorf("removing existing database: %w", err)
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()

	store, err := repositories.NewBadgerStore(d.Storage.Path, d.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Restore(f); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Database restored successfully")
	return nil
}
