package scheduler

import (
	"context"
	"sync"
	"time"

	"logbook/backend/internal/logger"
	"logbook/backend/internal/service"
)

// Scheduler runs periodic journal backups.
type Scheduler struct {
	backupService service.BackupService
	interval      time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	cancelFunc    context.CancelFunc // cancels the current backup operation
	mu            sync.Mutex         // protects cancelFunc
}

func New(backupService service.BackupService, interval time.Duration) *Scheduler {
	return &Scheduler{
		backupService: backupService,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "backup", "resource", "entry", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	// Cancel any ongoing backup first
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "backup", "resource", "entry", "result", "ok")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.backup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) backup() {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	if err := s.backupService.Backup(ctx); err != nil {
		logger.Warn("scheduled backup failed", "module", "scheduler", "action", "backup", "resource", "entry", "result", "failed", "error", err)
	}
}
