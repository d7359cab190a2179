package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Bot      BotConfig
	Report   ReportConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// BotConfig carries the Telegram bot credentials and the moderator set.
type BotConfig struct {
	Token    string
	AdminIDs []int64
	Debug    bool
}

// ReportConfig points at the public channel confirmed reviews are posted to.
type ReportConfig struct {
	ChannelID       int64
	ChannelUsername string
}

type SessionConfig struct {
	TTLMinutes int
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DB_URL", ""),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-this-secret-in-production"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		Bot: BotConfig{
			Token:    getEnv("BOT_TOKEN", ""),
			AdminIDs: getEnvAsInt64Slice("ADMIN_IDS"),
			Debug:    getEnv("BOT_DEBUG", "") == "true",
		},
		Report: ReportConfig{
			ChannelID:       getEnvAsInt64("REPORT_CHANNEL_ID", 0),
			ChannelUsername: getEnv("REPORT_CHANNEL_USERNAME", ""),
		},
		Session: SessionConfig{
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 0),
		},
	}
}

// IsAdmin reports whether the given Telegram user id is in the configured admin set.
func IsAdmin(userID int64) bool {
	if AppConfig == nil {
		return false
	}
	for _, id := range AppConfig.Bot.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsInt64Slice parses a comma-separated list of int64 values.
// Malformed entries are skipped.
func getEnvAsInt64Slice(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
