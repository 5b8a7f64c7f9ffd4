package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	ScanCooldown      time.Duration
	ActorID           string
	LowStockThreshold int
	LogLevel          string
	LogFile           string
}

func Load() *Config {
	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/scanstock.db"),
		ScanCooldown:      getDuration("SCAN_COOLDOWN", 2*time.Second),
		ActorID:           getEnv("ACTOR_ID", "anonymous"),
		LowStockThreshold: getInt("LOW_STOCK_THRESHOLD", 5),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
