package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"logbook/backend/internal/config"
	"logbook/backend/internal/db"
	"logbook/backend/internal/handler"
	transport "logbook/backend/internal/http"
	"logbook/backend/internal/logger"
	"logbook/backend/internal/repository"
	"logbook/backend/internal/scheduler"
	"logbook/backend/internal/service"
	"logbook/backend/internal/service/ai"
	"logbook/backend/internal/snowflake"
)

const defaultAskRateLimit = 1

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slotRepo := repository.NewSlotRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)
	entryRepo := repository.NewEntryRepository(ctx, slotRepo)

	rateLimiter := ai.NewRateLimiter(defaultAskRateLimit)

	entryService := service.NewEntryService(entryRepo)
	importService := service.NewImportService(entryRepo)
	compilationService := service.NewCompilationService(entryRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	askService := service.NewAskService(entryRepo, settingsRepo, rateLimiter)
	backupService := service.NewBackupService(entryService, cfg.DataDir)

	entryHandler := handler.NewEntryHandler(entryService, compilationService)
	transferHandler := handler.NewTransferHandler(importService, entryService)
	askHandler := handler.NewAskHandler(askService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	router := transport.NewRouter(entryHandler, transferHandler, askHandler, settingsHandler, cfg.StaticDir)

	var sched *scheduler.Scheduler
	if cfg.BackupInterval > 0 {
		sched = scheduler.New(backupService, cfg.BackupInterval)
		sched.Start()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "module", "main", "action", "shutdown", "resource", "server", "result", "ok")
		if sched != nil {
			sched.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
