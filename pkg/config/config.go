package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIAddr            string
	CORSAllowedOrigins []string

	StorageDriver string // file, sqlite or postgres
	DataDir       string
	SQLitePath    string
	DatabaseURL   string
	TasksSlot     string
	DevicesSlot   string

	DayLabelFormat string
	Timezone       string

	ReminderCheckInterval time.Duration
	ReminderWorkers       int
	ReminderQueueSize     int
	FirebaseCredentials   string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	checkInterval := time.Second
	if v := os.Getenv("REMINDER_CHECK_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			checkInterval = parsed
		}
	}

	dataDir := expandHome(getEnv("DATA_DIR", "~/.todo"))

	return &Config{
		APIAddr:               getEnv("API_ADDR", "127.0.0.1:8080"),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:*,http://127.0.0.1:*"),
		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		DataDir:               dataDir,
		SQLitePath:            expandHome(getEnv("SQLITE_PATH", filepath.Join(dataDir, "todo.db"))),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		TasksSlot:             getEnv("TASKS_SLOT", "tasks"),
		DevicesSlot:           getEnv("DEVICES_SLOT", "devices"),
		DayLabelFormat:        getEnv("DAY_LABEL_FORMAT", "02.01.2006"),
		Timezone:              getEnv("TIMEZONE", ""),
		ReminderCheckInterval: checkInterval,
		ReminderWorkers:       getEnvInt("REMINDER_WORKERS", 2),
		ReminderQueueSize:     getEnvInt("REMINDER_QUEUE_SIZE", 100),
		FirebaseCredentials:   getEnv("FIREBASE_CREDENTIALS", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
	}
}

// Location resolves Timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	var list []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
