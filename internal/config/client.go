package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// ClientConfig configures the command-line dashboard client.
type ClientConfig struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	SessionStore   string
	SessionPath    string
	SessionKey     string
	SessionTTL     time.Duration
	RedisURL       string
	FilterByOwner  bool
	TxCooldown     time.Duration
	LogLevel       string
}

// LoadClient reads the client configuration from the environment.
func LoadClient() *ClientConfig {
	return &ClientConfig{
		APIBaseURL:     getEnv("BANK_API_URL", "http://localhost:8080/api"),
		RequestTimeout: getDurationEnv("BANK_API_TIMEOUT", 15*time.Second),
		SessionStore:   getEnv("SESSION_STORE", SessionStoreFile),
		SessionPath:    getEnv("SESSION_PATH", defaultSessionPath()),
		SessionKey:     getEnv("SESSION_KEY", "bankctl:session"),
		SessionTTL:     getDurationEnv("SESSION_TTL", 24*time.Hour),
		RedisURL:       getEnv("REDIS_URL", ""),
		FilterByOwner:  getBoolEnv("FILTER_BY_OWNER", true),
		TxCooldown:     getDurationEnv("TX_COOLDOWN", 500*time.Millisecond),
		LogLevel:       getEnv("LOG_LEVEL", "error"),
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "bankctl", "session.json")
}
