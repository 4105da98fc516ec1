// internal/config/config.go
//
// Runtime configuration read from the environment (and .env when present).
// Every setting has a development default; see .env.example.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Game    GameConfig
	Logging LoggingConfig
	DBPath  string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	Env          string // "development" or "production"
	ClientOrigin string
	Timeout      time.Duration
}

// AuthConfig holds JWT and cookie settings
type AuthConfig struct {
	JWTSecret  string
	JWTExpires time.Duration
	CookieName string
}

// GameConfig holds game-related configuration
type GameConfig struct {
	WordsFile   string
	DailySalt   string
	IdleTTL     time.Duration // sessions with no guess for this long are dropped
	FinishedTTL time.Duration // finished rounds stay resettable for this long
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load reads a .env file if present, then environment variables with defaults.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5175"),
			Env:          getEnv("APP_ENV", "development"),
			ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			Timeout:      time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "dev_secret_change_me"),
			JWTExpires: time.Duration(getEnvInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
			CookieName: getEnv("COOKIE_NAME", "hangman_token"),
		},
		Game: GameConfig{
			WordsFile:   getEnv("WORDS_FILE", ""),
			DailySalt:   getEnv("DAILY_SALT", "local_dev_salt"),
			IdleTTL:     time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
			FinishedTTL: time.Duration(getEnvInt("SESSION_FINISHED_MINUTES", 15)) * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DBPath: getEnv("DB_PATH", "./data/hangman.db"),
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
