package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	AppPort         string
	DatabaseURL     string
	JWTSecret       string
	TokenExpires    time.Duration
	VerificationTTL time.Duration
	RedisURL        string
	UploadDir       string
	CORSOrigins     string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	TelegramBotToken  string
	TelegramAdminChat string
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "4000"),
		DatabaseURL:       getEnv("DATABASE_URL", "root:root@tcp(127.0.0.1:3306)/viajes?charset=utf8mb4&parseTime=True&loc=UTC"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenExpires:      getEnvDuration("JWT_TTL_HOURS", 24*7) * time.Hour,
		VerificationTTL:   getEnvDuration("VERIFICATION_TTL_MINUTES", 10) * time.Minute,
		RedisURL:          getEnv("REDIS_URL", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		MailFrom:          getEnv("MAIL_FROM", ""),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg
}

// AllowedOrigins returns CORS origins as the comma separated list fiber expects.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback))
}
