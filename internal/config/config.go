package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	DataDir          string
	TemplatesPath    string
	HistoryDBPath    string
	ListenAddr       string
	ExpiryWindowDays int
}

// LoadConfig loads configuration from environment variables or defaults
func LoadConfig() *Config {
	dataDir := getEnv("PASSPORT_DATA_DIR", "data")

	return &Config{
		DataDir:          dataDir,
		TemplatesPath:    getEnv("PASSPORT_TEMPLATES_FILE", filepath.Join(dataDir, "message_templates.json")),
		HistoryDBPath:    getEnv("PASSPORT_HISTORY_DB", filepath.Join(dataDir, "notifications.db")),
		ListenAddr:       getEnv("PASSPORT_LISTEN_ADDR", ":8080"),
		ExpiryWindowDays: getEnvInt("PASSPORT_EXPIRY_WINDOW_DAYS", 90),
	}
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
