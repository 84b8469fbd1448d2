package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"logbook/backend/internal/logger"
)

const backupKeep = 7

// BackupService periodically writes the export JSON to dated files so a
// corrupted slot never means losing the journal.
type BackupService interface {
	Backup(ctx context.Context) error
}

type backupService struct {
	entries EntryService
	dir     string
}

// NewBackupService creates a backup service writing under dataDir/backups.
func NewBackupService(entries EntryService, dataDir string) BackupService {
	return &backupService{
		entries: entries,
		dir:     filepath.Join(dataDir, "backups"),
	}
}

func (s *backupService) Backup(ctx context.Context) error {
	payload, err := s.entries.Export(ctx)
	if err != nil {
		return fmt.Errorf("export for backup: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("logbook-%s.json", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	s.prune()
	logger.Info("backup written", "module", "service", "action", "backup", "resource", "entry", "result", "ok", "path", path)
	return nil
}

// prune keeps the newest backupKeep files. Backup names sort
// chronologically, so lexical order is enough.
func (s *backupService) prune() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "logbook-") && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= backupKeep {
		return
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-backupKeep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			logger.Warn("backup prune failed", "module", "service", "action", "backup", "resource", "entry", "result", "failed", "file", name, "error", err)
		}
	}
}
