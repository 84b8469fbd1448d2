package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "Logbook"
	AppVersion = "1.0.0"
)

type Config struct {
	Addr           string
	DBPath         string
	DataDir        string
	StaticDir      string
	LogLevel       string
	BackupInterval time.Duration
}

func Load() Config {
	addr := os.Getenv("LOGBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("LOGBOOK_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	path := os.Getenv("LOGBOOK_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "logbook.db")
	}
	staticDir := os.Getenv("LOGBOOK_STATIC_DIR")
	if staticDir == "" {
		staticDir = detectStaticDir()
	}

	return Config{
		Addr:           addr,
		DBPath:         filepath.Clean(path),
		DataDir:        filepath.Clean(dataDir),
		StaticDir:      filepath.Clean(staticDir),
		LogLevel:       os.Getenv("LOGBOOK_LOG_LEVEL"),
		BackupInterval: loadBackupInterval(),
	}
}

// loadBackupInterval reads LOGBOOK_BACKUP_INTERVAL in minutes.
// 0 disables the backup scheduler.
func loadBackupInterval() time.Duration {
	raw := os.Getenv("LOGBOOK_BACKUP_INTERVAL")
	if raw == "" {
		return 6 * time.Hour
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 6 * time.Hour
	}
	return time.Duration(minutes) * time.Minute
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}
