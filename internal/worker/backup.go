package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"maitred/internal/config"
	"maitred/internal/models"

	"github.com/rs/zerolog"
)

// BackupService periodically copies the seven day ledgers and the users
// database into a timestamped directory. Copies are taken without holding
// the day locks, so a backup racing a rewrite can capture a ledger
// mid-rewrite; backups are a best-effort safety net, not a consistency
// point.
type BackupService struct {
	dataDir     string
	usersDBPath string
	cfg         config.BackupConfig
	logger      zerolog.Logger
}

func NewBackupService(dataDir, usersDBPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		dataDir:     dataDir,
		usersDBPath: usersDBPath,
		cfg:         cfg,
		logger:      logger.With().Str("component", "backup").Logger(),
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if s.cfg.Schedule != "" {
		if d, err := time.ParseDuration(s.cfg.Schedule); err == nil {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.cfg.Schedule).Msg("failed to parse backup schedule, using default 24h")
		}
	}
	s.logger.Info().Dur("interval", interval).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run the first backup immediately.
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

// PerformBackup copies every present ledger file and the users database into
// a new timestamped directory under the storage path.
func (s *BackupService) PerformBackup() error {
	timestamp := time.Now().Format("20060102_150405")
	backupDir := filepath.Join(s.cfg.StoragePath, "backup_"+timestamp)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	for _, day := range models.Weekdays() {
		src := filepath.Join(s.dataDir, day+".txt")
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(backupDir, day+".txt")); err != nil {
			return fmt.Errorf("failed to back up %s ledger: %w", day, err)
		}
	}

	if s.usersDBPath != "" {
		if _, err := os.Stat(s.usersDBPath); err == nil {
			dst := filepath.Join(backupDir, filepath.Base(s.usersDBPath))
			if err := copyFile(s.usersDBPath, dst); err != nil {
				return fmt.Errorf("failed to back up users database: %w", err)
			}
		}
	}

	s.logger.Info().Str("path", backupDir).Msg("backup completed")
	return nil
}

// CleanupOldBackups removes backup directories older than the retention
// window.
func (s *BackupService) CleanupOldBackups() {
	if s.cfg.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.cfg.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.cfg.StoragePath, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				s.logger.Error().Err(err).Str("path", path).Msg("failed to remove old backup")
			} else {
				s.logger.Info().Str("path", path).Msg("removed old backup")
			}
		}
	}
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}
	return destination.Sync()
}
