package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls the periodic database backup.
type BackupConfig struct {
	Enabled       bool
	IntervalHours int
	Path          string
	RetentionDays int
}

// BackupService copies the sqlite file to a backup directory on a schedule.
type BackupService struct {
	dbPath string
	config BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{dbPath: dbPath, config: cfg, logger: logger}
}

// Start runs the backup loop until the context is cancelled.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service disabled")
		return
	}

	interval := time.Duration(s.config.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	s.logger.Info().Dur("interval", interval).Str("path", s.config.Path).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a timestamped copy of the database file.
func (s *BackupService) PerformBackup() error {
	if err := os.MkdirAll(s.config.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(s.config.Path, fmt.Sprintf("backup_%s.db", timestamp))

	source, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err = io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return nil
}

// CleanupOldBackups removes backups older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.Path)
	if err != nil {
		s.logger.Error().Err(err).Msg("read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			os.Remove(filepath.Join(s.config.Path, file.Name()))
		}
	}
}
