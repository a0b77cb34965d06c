package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"maitred/internal/config"
	"maitred/internal/ledger"
	"maitred/internal/logging"
	"maitred/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 8*time.Second, policy.NextDelay(4))
	assert.Equal(t, 10*time.Second, policy.NextDelay(5))
	assert.Equal(t, 10*time.Second, policy.NextDelay(6))
}

func TestNextDelayDefaults(t *testing.T) {
	var policy RetryPolicy
	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
}

func TestPerformBackup(t *testing.T) {
	dataDir := t.TempDir()
	backupRoot := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "monday.txt"), []byte("row\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "friday.txt"), []byte("row\n"), 0o644))
	usersDB := filepath.Join(dataDir, "users.db")
	require.NoError(t, os.WriteFile(usersDB, []byte("sqlite"), 0o644))

	svc := NewBackupService(dataDir, usersDB, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupRoot,
	}, logging.Nop())

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	backupDir := filepath.Join(backupRoot, entries[0].Name())
	assert.FileExists(t, filepath.Join(backupDir, "monday.txt"))
	assert.FileExists(t, filepath.Join(backupDir, "friday.txt"))
	assert.FileExists(t, filepath.Join(backupDir, "users.db"))
	assert.NoFileExists(t, filepath.Join(backupDir, "tuesday.txt"))
}

func TestPerformBackupWithoutUsersDB(t *testing.T) {
	dataDir := t.TempDir()
	backupRoot := t.TempDir()

	svc := NewBackupService(dataDir, filepath.Join(dataDir, "missing.db"), config.BackupConfig{
		Enabled:     true,
		StoragePath: backupRoot,
	}, logging.Nop())

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCleanupOldBackups(t *testing.T) {
	backupRoot := t.TempDir()

	oldDir := filepath.Join(backupRoot, "backup_20200101_000000")
	require.NoError(t, os.Mkdir(oldDir, 0o755))
	past := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldDir, past, past))

	freshDir := filepath.Join(backupRoot, "backup_fresh")
	require.NoError(t, os.Mkdir(freshDir, 0o755))

	unrelated := filepath.Join(backupRoot, "exports")
	require.NoError(t, os.Mkdir(unrelated, 0o755))
	require.NoError(t, os.Chtimes(unrelated, past, past))

	svc := NewBackupService(t.TempDir(), "", config.BackupConfig{
		Enabled:       true,
		StoragePath:   backupRoot,
		RetentionDays: 7,
	}, logging.Nop())

	svc.CleanupOldBackups()

	assert.NoDirExists(t, oldDir)
	assert.DirExists(t, freshDir)
	assert.DirExists(t, unrelated)
}

func TestCleanupDisabledWithoutRetention(t *testing.T) {
	backupRoot := t.TempDir()
	oldDir := filepath.Join(backupRoot, "backup_old")
	require.NoError(t, os.Mkdir(oldDir, 0o755))
	past := time.Now().AddDate(0, 0, -365)
	require.NoError(t, os.Chtimes(oldDir, past, past))

	svc := NewBackupService(t.TempDir(), "", config.BackupConfig{
		Enabled:     true,
		StoragePath: backupRoot,
	}, logging.Nop())

	svc.CleanupOldBackups()

	assert.DirExists(t, oldDir)
}

func TestExportWritesReport(t *testing.T) {
	dataDir := t.TempDir()
	exportDir := t.TempDir()

	store, err := ledger.NewStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, store.EnsureFiles())

	locks := ledger.NewLockRegistry()
	reservations := service.NewReservationService(locks, store, nil, nil, logging.Nop())

	outcome := reservations.MakeReservation(t.Context(), "alice", "monday", 1, 2, 12, false, "")
	require.Equal(t, "Reservation Made", outcome)

	exporter := NewOccupancyExporter(reservations, config.ExportConfig{
		Enabled: true,
		Path:    exportDir,
	}, RetryPolicy{}, logging.Nop())

	path, err := exporter.Export(t.Context())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
}
