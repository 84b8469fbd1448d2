package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logbook/backend/internal/model"
	"logbook/backend/internal/repository/mock"
	"logbook/backend/internal/service"
)

func TestBackupService_Backup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	mockEntries.EXPECT().Snapshot(gomock.Any()).Return([]model.Entry{
		{ID: "1", Date: "2024-01-01T10:00:00Z", Content: "backed up"},
	})

	dataDir := t.TempDir()
	svc := service.NewBackupService(service.NewEntryService(mockEntries), dataDir)

	require.NoError(t, svc.Backup(context.Background()))

	files, err := os.ReadDir(filepath.Join(dataDir, "backups"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Regexp(t, `^logbook-\d{8}-\d{6}\.json$`, files[0].Name())

	payload, err := os.ReadFile(filepath.Join(dataDir, "backups", files[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(payload), "backed up")
}

func TestBackupService_PrunesOldBackups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	mockEntries.EXPECT().Snapshot(gomock.Any()).Return(nil)

	dataDir := t.TempDir()
	backupDir := filepath.Join(dataDir, "backups")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))

	// Ten stale backups with older timestamps than any new one.
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("logbook-20200101-0000%02d.json", i)
		require.NoError(t, os.WriteFile(filepath.Join(backupDir, name), []byte("[]"), 0o644))
	}
	// Unrelated files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "notes.txt"), []byte("keep"), 0o644))

	svc := service.NewBackupService(service.NewEntryService(mockEntries), dataDir)
	require.NoError(t, svc.Backup(context.Background()))

	files, err := os.ReadDir(backupDir)
	require.NoError(t, err)

	var backups, others int
	for _, f := range files {
		if f.Name() == "notes.txt" {
			others++
		} else {
			backups++
		}
	}
	require.Equal(t, 7, backups)
	require.Equal(t, 1, others)
}
